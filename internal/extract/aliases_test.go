package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tableWith returns the default table with the given entries replaced.
func tableWith(t *testing.T, overrides map[FieldKey][]string) *AliasTable {
	t.Helper()
	entries := DefaultAliases().Entries()
	for i, e := range entries {
		if a, ok := overrides[e.Key]; ok {
			entries[i].Aliases = a
		}
	}
	table, err := NewAliasTable(entries)
	require.NoError(t, err)
	return table
}

func TestResolve_DefaultAliases(t *testing.T) {
	tests := []struct {
		header string
		want   FieldKey
	}{
		{"N° NPC", FieldNPC},
		{"NPC", FieldNPC},
		{"Numéro", FieldNPC},
		{"Nom", FieldNom},
		{"NOM", FieldNom},
		{"Nom de famille", FieldNom},
		{"Prénoms", FieldPrenoms},
		{"Prénom(s)", FieldPrenoms},
		{"Nom et prénoms", FieldPrenoms},
		{"Téléphone", FieldTelephone},
		{"Tél", FieldTelephone},
		{"Tel.", FieldTelephone},
		{"Numéro de téléphone", FieldTelephone},
		{"Personne à contacter", FieldPersonneContact},
		{"Contact d'urgence", FieldPersonneContact},
		{"Téléphone contact", FieldTelephoneContact},
		{"Tél. personne à contacter", FieldTelephoneContact},
		{"Tel. personne contact", FieldTelephoneContact},
		{"Téléphone personne contact", FieldTelephoneContact},
		{"Personne contact", FieldPersonneContact},
		{"Propriétaire", FieldProprietaire},
		{"Nom du propriétaire", FieldProprietaire},
		{"Téléphone du propriétaire", FieldTelephoneProprietaire},
		{"Résidence", FieldResidence},
		{"Residance", FieldResidence},
		{"Adresse", FieldResidence},
		{"Caractéristiques moto", FieldCaracteristiquesMoto},
		{"Caract. Moto", FieldCaracteristiquesMoto},
		{"Immatriculation", FieldCaracteristiquesMoto},
		{"Arrondissement", FieldArrondissement},
		{"ARR.", FieldArrondissement},
		{"Quartier", FieldArrondissement},
	}

	table := DefaultAliases()
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, ok := table.Resolve(tt.header)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_NoMatch(t *testing.T) {
	table := DefaultAliases()
	for _, h := range []string{"", "   ", "Rapport mensuel", "Observations", "Date", "°"} {
		t.Run(h, func(t *testing.T) {
			_, ok := table.Resolve(h)
			assert.False(t, ok)
		})
	}
}

func TestResolve_ExactMatchBeatsContainment(t *testing.T) {
	table := tableWith(t, map[FieldKey][]string{
		FieldNom:     {"nom"},
		FieldPrenoms: {"prenom", "prenoms"},
	})

	got, ok := table.Resolve("Nom")
	require.True(t, ok)
	assert.Equal(t, FieldNom, got)

	got, ok = table.Resolve("Prénoms")
	require.True(t, ok)
	assert.Equal(t, FieldPrenoms, got)
}

func TestResolve_ShortAliasGuard(t *testing.T) {
	t.Run("short header never matches by containment", func(t *testing.T) {
		table := tableWith(t, map[FieldKey][]string{
			FieldTelephone: {"telephone"},
		})
		_, ok := table.Resolve("Tél")
		assert.False(t, ok)
	})

	t.Run("short alias never matches inside a longer header", func(t *testing.T) {
		table := tableWith(t, map[FieldKey][]string{
			FieldResidence: {"tel"},
		})
		got, ok := table.Resolve("Hôtel de ville")
		if ok {
			assert.NotEqual(t, FieldResidence, got)
		}
	})

	t.Run("short header matches exactly", func(t *testing.T) {
		got, ok := DefaultAliases().Resolve("Tél")
		require.True(t, ok)
		assert.Equal(t, FieldTelephone, got)
	})
}

func TestResolve_PartialMatchFollowsTableOrder(t *testing.T) {
	entries := DefaultAliases().Entries()
	for i := range entries {
		switch entries[i].Key {
		case FieldResidence:
			entries[i].Aliases = []string{"lieu"}
		case FieldArrondissement:
			entries[i].Aliases = []string{"lieudit"}
		}
	}
	table := MustAliasTable(entries)

	// "lieudit" contains "lieu" and equals "lieudit"; exact wins.
	got, ok := table.Resolve("Lieu-dit")
	require.True(t, ok)
	assert.Equal(t, FieldArrondissement, got)

	// "lieuxdits" contains only "lieu".
	got, ok = table.Resolve("Lieux dits")
	require.True(t, ok)
	assert.Equal(t, FieldResidence, got)
}

func TestNewAliasTable_Validation(t *testing.T) {
	valid := DefaultAliases().Entries()

	tests := []struct {
		name   string
		mutate func([]AliasEntry) []AliasEntry
		errMsg string
	}{
		{
			name:   "missing key",
			mutate: func(e []AliasEntry) []AliasEntry { return e[1:] },
			errMsg: "missing entry",
		},
		{
			name: "unknown key",
			mutate: func(e []AliasEntry) []AliasEntry {
				return append(e, AliasEntry{Key: "email", Aliases: []string{"email"}})
			},
			errMsg: `unknown field "email"`,
		},
		{
			name: "duplicate key",
			mutate: func(e []AliasEntry) []AliasEntry {
				return append(e, AliasEntry{Key: FieldNom, Aliases: []string{"patronyme"}})
			},
			errMsg: `duplicate entry for "nom"`,
		},
		{
			name: "empty alias set",
			mutate: func(e []AliasEntry) []AliasEntry {
				e[0].Aliases = []string{" ", "°"}
				return e
			},
			errMsg: "no usable alias",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := make([]AliasEntry, len(valid))
			copy(entries, valid)
			_, err := NewAliasTable(tt.mutate(entries))
			require.ErrorIs(t, err, ErrInvalidAliases)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNewAliasTable_NormalizesAliases(t *testing.T) {
	table := tableWith(t, map[FieldKey][]string{
		FieldResidence: {"Lieu de Résidence", "lieu de residence", "Domicile"},
	})
	for _, e := range table.Entries() {
		if e.Key == FieldResidence {
			assert.Equal(t, []string{"lieuderesidence", "domicile"}, e.Aliases)
		}
	}
}

func TestDefaultAliases_CoversEveryField(t *testing.T) {
	entries := DefaultAliases().Entries()
	require.Len(t, entries, len(FieldKeys()))
	for _, e := range entries {
		assert.NotEmpty(t, e.Aliases, "field %s", e.Key)
		for _, a := range e.Aliases {
			assert.Equal(t, Normalize(a), a)
		}
	}
}

func TestEntries_ReturnsCopy(t *testing.T) {
	entries := DefaultAliases().Entries()
	entries[0].Aliases[0] = "mutated"
	assert.NotEqual(t, "mutated", DefaultAliases().Entries()[0].Aliases[0])
}
