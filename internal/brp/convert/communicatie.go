package convert

// Salutation building. The parameters arrive as a mapped object with the
// person's own name data and the full partner list; dissolved marriages
// only count when no current partner remains.

func getString(m map[string]any, keys ...string) string {
	cur := m
	for i, key := range keys {
		if i == len(keys)-1 {
			s, _ := cur[key].(string)
			return s
		}
		next, _ := cur[key].(map[string]any)
		if next == nil {
			return ""
		}
		cur = next
	}
	return ""
}

type communicatie struct {
	geslachtsaanduiding string
	naamgebruik         string
	voorletters         string
	eigenNaam           string
	partnerNaam         string
}

func newCommunicatie(params map[string]any) *communicatie {
	persoon, _ := params["persoon"].(map[string]any)
	if persoon == nil {
		return nil
	}
	c := &communicatie{
		geslachtsaanduiding: getString(persoon, "geslachtsaanduiding"),
		naamgebruik:         getString(persoon, "naam", "aanduidingNaamgebruik"),
		voorletters:         getString(persoon, "naam", "voorletters"),
		eigenNaam: joinNonEmpty(
			getString(persoon, "naam", "voorvoegsel"),
			getString(persoon, "naam", "geslachtsnaam")),
	}

	partners, _ := params["partners"].([]any)
	var current, former map[string]any
	for _, p := range partners {
		partner, ok := p.(map[string]any)
		if !ok {
			continue
		}
		dissolved := false
		if ohp, ok := partner["ontbindingHuwelijkPartnerschap"].(map[string]any); ok {
			dissolved = ohp["datum"] != nil
		}
		if dissolved {
			if former == nil {
				former = partner
			}
		} else if current == nil {
			current = partner
		}
	}
	partner := current
	if partner == nil {
		partner = former
	}
	if partner != nil {
		c.partnerNaam = joinNonEmpty(
			getString(partner, "naam", "voorvoegsel"),
			getString(partner, "naam", "geslachtsnaam"))
	}
	return c
}

// gebruiksnaam combines own and partner surname per the naamgebruik value.
func (c *communicatie) gebruiksnaam() string {
	combine := func(first, second string) string {
		if first != "" && second != "" {
			return first + "-" + second
		}
		return joinNonEmpty(first, second)
	}
	switch c.naamgebruik {
	case "partner":
		if c.partnerNaam != "" {
			return c.partnerNaam
		}
		return c.eigenNaam
	case "partner_eigen":
		return combine(c.partnerNaam, c.eigenNaam)
	case "eigen_partner":
		return combine(c.eigenNaam, c.partnerNaam)
	default:
		return c.eigenNaam
	}
}

// Aanschrijfwijze builds the formal address line: initials followed by the
// naamgebruik surname.
func (c *Converter) Aanschrijfwijze(v any) any {
	params, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	com := newCommunicatie(params)
	if com == nil {
		return nil
	}
	naam := com.gebruiksnaam()
	if naam == "" {
		return nil
	}
	out := joinNonEmpty(com.voorletters, naam)
	if out == "" {
		return nil
	}
	return out
}

// Aanhef builds the salutation. An unknown gender falls back to the
// aanschrijfwijze so the letter still opens with a name.
func (c *Converter) Aanhef(v any) any {
	params, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	com := newCommunicatie(params)
	if com == nil {
		return nil
	}
	naam := com.gebruiksnaam()
	if naam == "" {
		return nil
	}
	switch com.geslachtsaanduiding {
	case "man":
		return "Geachte heer " + naam
	case "vrouw":
		return "Geachte mevrouw " + naam
	}
	if aanschrijf, ok := c.Aanschrijfwijze(v).(string); ok {
		return "Geachte " + aanschrijf
	}
	return nil
}
