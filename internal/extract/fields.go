package extract

// FieldKey identifies one logical attribute extracted from a spreadsheet row.
type FieldKey string

const (
	FieldNPC                   FieldKey = "npc"
	FieldNom                   FieldKey = "nom"
	FieldPrenoms               FieldKey = "prenoms"
	FieldTelephone             FieldKey = "telephone"
	FieldPersonneContact       FieldKey = "personneContact"
	FieldTelephoneContact      FieldKey = "telephoneContact"
	FieldProprietaire          FieldKey = "proprietaire"
	FieldTelephoneProprietaire FieldKey = "telephoneProprietaire"
	FieldResidence             FieldKey = "residence"
	FieldCaracteristiquesMoto  FieldKey = "caracteristiquesMoto"
	FieldArrondissement        FieldKey = "arrondissement"
)

// Sentinel is the placeholder stored for missing or blank values (en dash).
const Sentinel = "–"

var fieldKeys = []FieldKey{
	FieldNPC,
	FieldNom,
	FieldPrenoms,
	FieldTelephone,
	FieldPersonneContact,
	FieldTelephoneContact,
	FieldProprietaire,
	FieldTelephoneProprietaire,
	FieldResidence,
	FieldCaracteristiquesMoto,
	FieldArrondissement,
}

var fieldLabels = map[FieldKey]string{
	FieldNPC:                   "N° NPC",
	FieldNom:                   "Nom",
	FieldPrenoms:               "Prénoms",
	FieldTelephone:             "Téléphone",
	FieldPersonneContact:       "Personne à contacter",
	FieldTelephoneContact:      "Téléphone contact",
	FieldProprietaire:          "Propriétaire",
	FieldTelephoneProprietaire: "Téléphone propriétaire",
	FieldResidence:             "Résidence",
	FieldCaracteristiquesMoto:  "Caractéristiques moto",
	FieldArrondissement:        "Arrondissement",
}

// RequiredFields must be detected in the header; each missing one produces
// a warning in the extraction result.
var RequiredFields = []FieldKey{FieldNPC, FieldNom, FieldPrenoms, FieldTelephone}

// FieldKeys returns the fixed field enumeration in declaration order.
// The returned slice is a copy.
func FieldKeys() []FieldKey {
	out := make([]FieldKey, len(fieldKeys))
	copy(out, fieldKeys)
	return out
}

// Valid reports whether k is part of the enumeration.
func (k FieldKey) Valid() bool {
	_, ok := fieldLabels[k]
	return ok
}

// Label returns the French display label used on cards and in warnings.
func (k FieldKey) Label() string {
	if l, ok := fieldLabels[k]; ok {
		return l
	}
	return string(k)
}
