package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryContactIsEitherDialableOrExternal(t *testing.T) {
	for _, z := range Zones() {
		for _, c := range Contacts(z) {
			switch r := c.Reach.(type) {
			case Dialable:
				assert.NotEmpty(t, r.Phone, "%s/%s", z, c.Name)
				assert.False(t, c.IsExternalLink())
				assert.Empty(t, c.ExternalURL())
			case ExternalLink:
				assert.NotEmpty(t, r.URL, "%s/%s", z, c.Name)
				assert.True(t, c.IsExternalLink())
				assert.Empty(t, c.Phone())
				assert.False(t, c.HasMessaging())
			default:
				t.Fatalf("%s/%s: unexpected reach %T", z, c.Name, c.Reach)
			}
		}
	}
}

func TestUrgentContactsIsPrefixOfUrgentFilter(t *testing.T) {
	for _, z := range Zones() {
		var all []Contact
		for _, c := range Contacts(z) {
			if c.Urgent {
				all = append(all, c)
			}
		}
		got := UrgentContacts(z)
		require.LessOrEqual(t, len(got), MaxUrgent)
		require.Equal(t, min(len(all), MaxUrgent), len(got))
		assert.Equal(t, all[:len(got)], got, z.String())
	}
}

func TestUrgentContactsCABA(t *testing.T) {
	got := UrgentContacts(CABA)
	names := []string{got[0].Name, got[1].Name, got[2].Name}
	assert.Equal(t, []string{"SAME", "Policía", "Bomberos"}, names)
}

func TestUrgentContactsPBATruncates(t *testing.T) {
	got := UrgentContacts(PBA)
	require.Len(t, got, 3)
	assert.Equal(t, "Emergencias", got[0].Name)
	assert.Equal(t, "Policía", got[2].Name)
}

func TestContactsKeepsOrderAndSize(t *testing.T) {
	caba := Contacts(CABA)
	require.Len(t, caba, 12)
	assert.Equal(t, "SAME", caba[0].Name)
	assert.Equal(t, "Farmacias", caba[len(caba)-1].Name)
	assert.Equal(t, "0800-666-4001", caba[8].Phone())

	pba := Contacts(PBA)
	require.Len(t, pba, 13)
	assert.Equal(t, "Emergencias", pba[0].Name)
}

func TestContactsReturnsCopy(t *testing.T) {
	got := Contacts(CABA)
	got[0].Name = "changed"
	assert.Equal(t, "SAME", Contacts(CABA)[0].Name)
}

func TestMessagingOnlyOnGenderViolenceLine(t *testing.T) {
	for _, z := range Zones() {
		for _, c := range Contacts(z) {
			assert.Equal(t, c.Name == "Violencia de Género", c.HasMessaging(), "%s/%s", z, c.Name)
		}
	}
}

func TestParseZone(t *testing.T) {
	tests := []struct {
		in      string
		want    Zone
		wantErr bool
	}{
		{"CABA", CABA, false},
		{"pba", PBA, false},
		{" PBA ", PBA, false},
		{"", 0, true},
		{"Cordoba", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseZone(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnknownZone, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestContactJSON(t *testing.T) {
	raw, err := json.Marshal(Contacts(CABA)[5])
	require.NoError(t, err)
	assert.JSONEq(t, `{"emoji":"🚺","name":"Violencia de Género","phone":"144","hasMessaging":true,"isExternalLink":false,"isUrgent":false}`, string(raw))

	raw, err = json.Marshal(Contacts(CABA)[11])
	require.NoError(t, err)
	assert.JSONEq(t, `{"emoji":"💊🌐","name":"Farmacias","phone":"","hasMessaging":false,"isExternalLink":true,"externalUrl":"https://farmacias.com.ar","isUrgent":false}`, string(raw))
}

func TestZoneText(t *testing.T) {
	var z Zone
	require.NoError(t, z.UnmarshalText([]byte("PBA")))
	assert.Equal(t, PBA, z)
	assert.Error(t, z.UnmarshalText([]byte("x")))
	assert.Equal(t, "Provincia de Buenos Aires", PBA.Label())
	assert.Equal(t, CABA, DefaultZone)
}
