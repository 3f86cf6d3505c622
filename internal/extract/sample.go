package extract

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
)

var (
	sampleArrondissements = []string{
		"Akpakpa", "Cadjèhoun", "Fidjrossè", "Godomey", "Agla",
		"Gbégamey", "Zogbo", "Vèdoko", "Houéyiho", "Sainte Rita",
	}
	sampleMotos = []string{
		"Bajaj Boxer", "TVS Star HLX", "Haojue", "Honda CG 125", "Yamaha Crux",
	}
)

// SampleRecords returns n synthetic records for demonstrations. A zero
// seed draws a random one. Roughly one record in five has no telephone,
// mirroring real sheets.
func SampleRecords(n int, seed int64) []ContributorRecord {
	if n <= 0 {
		return []ContributorRecord{}
	}

	f := gofakeit.New(seed)
	year := f.Number(2020, 2026)

	out := make([]ContributorRecord, 0, n)
	for i := 1; i <= n; i++ {
		rec := ContributorRecord{
			ID:                   fmt.Sprintf("sample-%d", i),
			NPC:                  fmt.Sprintf("NPC-%d-%03d", year, i),
			Nom:                  strings.ToUpper(f.LastName()),
			Prenoms:              f.FirstName(),
			Residence:            f.Street(),
			CaracteristiquesMoto: f.RandomString(sampleMotos) + " " + f.Numerify("## ## RB ####"),
			Arrondissement:       f.RandomString(sampleArrondissements),
		}
		if f.Number(1, 5) != 1 {
			rec.Telephone = phone(f)
		}
		if f.Bool() {
			rec.PersonneContact = f.FirstName() + " " + strings.ToUpper(f.LastName())
			rec.TelephoneContact = phone(f)
		}
		if f.Bool() {
			rec.Proprietaire = strings.ToUpper(f.LastName()) + " " + f.FirstName()
			rec.TelephoneProprietaire = phone(f)
		}
		rec.Fill()
		out = append(out, rec)
	}
	return out
}

func phone(f *gofakeit.Faker) string {
	return f.Numerify("9# ## ## ##")
}
