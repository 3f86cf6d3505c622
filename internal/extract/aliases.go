package extract

import (
	"errors"
	"fmt"
	"strings"
)

// minPartialLen is the shortest normalized string allowed to take part in
// a containment match. Shorter aliases ("nom", "tel", "arr") only match
// exactly, so they never fire inside longer unrelated words.
const minPartialLen = 4

// prenomMarker short-circuits resolution to FieldPrenoms. Without it
// "prenoms" would be claimed by FieldNom through containment.
const prenomMarker = "prenom"

// ErrInvalidAliases is returned by NewAliasTable for a malformed vocabulary.
var ErrInvalidAliases = errors.New("invalid alias table")

// AliasEntry lists the header spellings accepted for one field.
type AliasEntry struct {
	Key     FieldKey
	Aliases []string
}

// AliasTable is the immutable header vocabulary. Entries are ordered: the
// order decides which field wins a partial match when several could.
type AliasTable struct {
	entries []AliasEntry
}

// NewAliasTable validates entries and stores every alias in normalized
// form. The table must cover every FieldKey exactly once and no field may
// end up with an empty alias set.
func NewAliasTable(entries []AliasEntry) (*AliasTable, error) {
	seen := make(map[FieldKey]bool, len(entries))
	var errs []string

	out := make([]AliasEntry, 0, len(entries))
	for _, e := range entries {
		if !e.Key.Valid() {
			errs = append(errs, fmt.Sprintf("unknown field %q", e.Key))
			continue
		}
		if seen[e.Key] {
			errs = append(errs, fmt.Sprintf("duplicate entry for %q", e.Key))
			continue
		}
		seen[e.Key] = true

		aliases := make([]string, 0, len(e.Aliases))
		dedup := make(map[string]bool, len(e.Aliases))
		for _, a := range e.Aliases {
			n := Normalize(a)
			if n == "" || dedup[n] {
				continue
			}
			dedup[n] = true
			aliases = append(aliases, n)
		}
		if len(aliases) == 0 {
			errs = append(errs, fmt.Sprintf("field %q has no usable alias", e.Key))
			continue
		}
		out = append(out, AliasEntry{Key: e.Key, Aliases: aliases})
	}

	for _, k := range fieldKeys {
		if !seen[k] {
			errs = append(errs, fmt.Sprintf("missing entry for %q", k))
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w:\n  - %s", ErrInvalidAliases, strings.Join(errs, "\n  - "))
	}
	return &AliasTable{entries: out}, nil
}

// MustAliasTable is NewAliasTable that panics on error.
func MustAliasTable(entries []AliasEntry) *AliasTable {
	t, err := NewAliasTable(entries)
	if err != nil {
		panic(err)
	}
	return t
}

// Entries returns a copy of the table in priority order.
func (t *AliasTable) Entries() []AliasEntry {
	out := make([]AliasEntry, len(t.entries))
	for i, e := range t.entries {
		out[i] = AliasEntry{Key: e.Key, Aliases: append([]string(nil), e.Aliases...)}
	}
	return out
}

// Resolve maps a raw header text to a field. Rules apply in order:
//
//  1. a normalized header containing "prenom" is FieldPrenoms;
//  2. an exact alias match, first entry wins;
//  3. a containment match in either direction, only when both strings are
//     at least four characters long, first entry wins;
//  4. otherwise no field.
func (t *AliasTable) Resolve(header string) (FieldKey, bool) {
	return t.resolveNormalized(Normalize(header))
}

func (t *AliasTable) resolveNormalized(h string) (FieldKey, bool) {
	if h == "" {
		return "", false
	}
	if strings.Contains(h, prenomMarker) {
		return FieldPrenoms, true
	}

	for _, e := range t.entries {
		for _, a := range e.Aliases {
			if a == h {
				return e.Key, true
			}
		}
	}

	if len(h) < minPartialLen {
		return "", false
	}
	for _, e := range t.entries {
		for _, a := range e.Aliases {
			if len(a) < minPartialLen {
				continue
			}
			if strings.Contains(h, a) || strings.Contains(a, h) {
				return e.Key, true
			}
		}
	}
	return "", false
}

var defaultAliases = MustAliasTable([]AliasEntry{
	// Specific phone roles come first so "téléphone contact" never falls
	// through to the generic telephone or contact entries.
	{FieldTelephoneContact, []string{
		"telephonecontact", "telcontact", "contacttel", "telephoneducontact",
		"telephonepersonneacontacter", "telephonedelapersonneacontacter",
		"telpersonneacontacter", "telpersonnecontact", "telephonepersonnecontact",
		"telurgence", "telephoneurgence",
	}},
	{FieldTelephoneProprietaire, []string{
		"telephoneproprietaire", "telephoneduproprietaire", "telproprietaire",
		"telproprio", "contactproprietaire",
	}},
	{FieldPersonneContact, []string{
		"personneacontacter", "personnecontact", "contact", "contacturgence",
		"personneaprevenir",
	}},
	{FieldProprietaire, []string{
		"proprietaire", "proprio", "owner", "proprietairemoto", "nomproprietaire",
	}},
	{FieldCaracteristiquesMoto, []string{
		"caracteristiquesmoto", "caracteristiquemoto", "caracteristiques",
		"caractmoto", "moto", "marquemoto", "immatriculation", "engin",
	}},
	{FieldResidence, []string{
		"residence", "residance", "adresse", "domicile", "address", "lieuderesidence",
	}},
	{FieldArrondissement, []string{
		"arrondissement", "district", "quartier", "zone", "arr",
	}},
	{FieldPrenoms, []string{"prenoms", "prenom", "firstname", "firstnames"}},
	{FieldNom, []string{"nom", "name", "lastname", "nomdefamille", "surname", "nomduconducteur"}},
	{FieldTelephone, []string{
		"telephone", "tel", "phone", "mobile", "telconducteur",
		"telephoneconducteur", "cel", "cellulaire", "portable",
	}},
	{FieldNPC, []string{"nnpc", "npc", "numeronpc", "numero", "no", "n", "nonpc"}},
})

// DefaultAliases returns the production vocabulary for driver registration
// sheets. The table is shared and immutable.
func DefaultAliases() *AliasTable {
	return defaultAliases
}
