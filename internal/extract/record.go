package extract

// ContributorRecord is one extracted driver row. Every field holds either
// the trimmed cell text or Sentinel.
type ContributorRecord struct {
	ID                    string `json:"id"`
	NPC                   string `json:"npc"`
	Nom                   string `json:"nom"`
	Prenoms               string `json:"prenoms"`
	Telephone             string `json:"telephone"`
	PersonneContact       string `json:"personneContact"`
	TelephoneContact      string `json:"telephoneContact"`
	Proprietaire          string `json:"proprietaire"`
	TelephoneProprietaire string `json:"telephoneProprietaire"`
	Residence             string `json:"residence"`
	CaracteristiquesMoto  string `json:"caracteristiquesMoto"`
	Arrondissement        string `json:"arrondissement"`
}

// Value returns the value stored for key, or "" for an unknown key.
func (r *ContributorRecord) Value(key FieldKey) string {
	if p := r.field(key); p != nil {
		return *p
	}
	return ""
}

// Set stores v under key. Blank values become Sentinel. Unknown keys are
// ignored.
func (r *ContributorRecord) Set(key FieldKey, v string) {
	if p := r.field(key); p != nil {
		*p = orSentinel(v)
	}
}

// Fill replaces every empty field with Sentinel.
func (r *ContributorRecord) Fill() {
	for _, k := range fieldKeys {
		if p := r.field(k); *p == "" {
			*p = Sentinel
		}
	}
}

// Present reports whether key holds a real value.
func (r *ContributorRecord) Present(key FieldKey) bool {
	v := r.Value(key)
	return v != "" && v != Sentinel
}

// FullName joins Nom and Prénoms, skipping missing parts.
func (r *ContributorRecord) FullName() string {
	switch {
	case r.Present(FieldNom) && r.Present(FieldPrenoms):
		return r.Nom + " " + r.Prenoms
	case r.Present(FieldNom):
		return r.Nom
	case r.Present(FieldPrenoms):
		return r.Prenoms
	}
	return Sentinel
}

func (r *ContributorRecord) field(key FieldKey) *string {
	switch key {
	case FieldNPC:
		return &r.NPC
	case FieldNom:
		return &r.Nom
	case FieldPrenoms:
		return &r.Prenoms
	case FieldTelephone:
		return &r.Telephone
	case FieldPersonneContact:
		return &r.PersonneContact
	case FieldTelephoneContact:
		return &r.TelephoneContact
	case FieldProprietaire:
		return &r.Proprietaire
	case FieldTelephoneProprietaire:
		return &r.TelephoneProprietaire
	case FieldResidence:
		return &r.Residence
	case FieldCaracteristiquesMoto:
		return &r.CaracteristiquesMoto
	case FieldArrondissement:
		return &r.Arrondissement
	}
	return nil
}
