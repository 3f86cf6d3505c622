package extract

import "strings"

// ColumnIndexMap maps each detected field to its zero-based column index.
// Indices are distinct.
type ColumnIndexMap map[FieldKey]int

// Has reports whether key was detected.
func (m ColumnIndexMap) Has(key FieldKey) bool {
	_, ok := m[key]
	return ok
}

// Missing returns the keys from want that are not in the map, in order.
func (m ColumnIndexMap) Missing(want []FieldKey) []FieldKey {
	var out []FieldKey
	for _, k := range want {
		if !m.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// assignment is the accumulator threaded through the header fold.
type assignment struct {
	columns ColumnIndexMap
	claimed map[int]bool
	// prev is the key given to the previous title, empty when that title
	// was unrecognized or discarded.
	prev FieldKey
}

// AssignColumns maps fields to column indices from the header row.
//
// Titles are visited left to right and the first title for a field claims
// it. A second generic telephone title is reassigned from the field of the
// title just before it: after personneContact it becomes telephoneContact,
// after proprietaire telephoneProprietaire. Failing that it fills
// telephoneContact, then telephoneProprietaire, and is dropped once all
// three phone roles are taken. When no title resolved to prenoms, the raw
// cells are rescanned for "prenom".
func AssignColumns(header []string, table *AliasTable) ColumnIndexMap {
	acc := assignment{
		columns: make(ColumnIndexMap),
		claimed: make(map[int]bool),
	}
	for _, tok := range headerTokens(header) {
		acc = acc.step(tok, table)
	}

	if !acc.columns.Has(FieldPrenoms) {
		for i, cell := range header {
			if acc.claimed[i] {
				continue
			}
			if strings.Contains(Normalize(cell), prenomMarker) {
				acc.columns[FieldPrenoms] = i
				break
			}
		}
	}
	return acc.columns
}

func (a assignment) step(tok headerToken, table *AliasTable) assignment {
	key, ok := table.Resolve(tok.text)
	if !ok || a.claimed[tok.index] {
		a.prev = ""
		return a
	}

	if a.columns.Has(key) {
		if key != FieldTelephone {
			a.prev = ""
			return a
		}
		key = a.phoneRole()
		if key == "" {
			a.prev = ""
			return a
		}
	}

	a.columns[key] = tok.index
	a.claimed[tok.index] = true
	a.prev = key
	return a
}

// phoneRole picks the role for a duplicate generic telephone title.
func (a assignment) phoneRole() FieldKey {
	switch {
	case a.prev == FieldPersonneContact && !a.columns.Has(FieldTelephoneContact):
		return FieldTelephoneContact
	case a.prev == FieldProprietaire && !a.columns.Has(FieldTelephoneProprietaire):
		return FieldTelephoneProprietaire
	case !a.columns.Has(FieldTelephoneContact):
		return FieldTelephoneContact
	case !a.columns.Has(FieldTelephoneProprietaire):
		return FieldTelephoneProprietaire
	}
	return ""
}
