// Package catalog holds the static emergency contact tables of each zone.
package catalog

import "slices"

// MaxUrgent is how many urgent contacts the emergency overlay shows.
const MaxUrgent = 3

const pharmaciesURL = "https://farmacias.com.ar"

var cabaContacts = []Contact{
	urgent("🚑", "SAME", "107"),
	urgent("👮‍♂️", "Policía", "911"),
	urgent("🔥", "Bomberos", "100"),
	phone("🛡️", "Defensa Civil", "103"),
	phone("🏚️", "Calle", "108"),
	withMessaging("🚺", "Violencia de Género", "144"),
	phone("🧠💔", "Suicidio", "135"),
	phone("📞", "Reclamos GCBA", "147"),
	phone("💡", "Edenor", "0800-666-4001"),
	phone("⚡", "Edesur", "0800-222-0200"),
	phone("💧", "Aysa", "0800-321-2482"),
	link("💊🌐", "Farmacias", pharmaciesURL),
}

var pbaContacts = []Contact{
	urgent("🚨", "Emergencias", "911"),
	urgent("🚑", "SAME", "107"),
	urgent("👮‍♂️", "Policía", "911"),
	urgent("🔥", "Bomberos", "100"),
	phone("🛡️", "Defensa Civil", "103"),
	phone("🏚️", "Calle", "108"),
	withMessaging("🚺", "Violencia de Género", "144"),
	phone("🧠💔", "Suicidio", "135"),
	phone("📞", "Reclamos Municipales", "0800-222-0021"),
	phone("💡", "Eden", "0800-999-3336"),
	phone("⚡", "Edelap", "0800-222-3335"),
	phone("💧", "ABSA", "0800-999-2272"),
	link("💊🌐", "Farmacias", pharmaciesURL),
}

var byZone = [...][]Contact{
	CABA: cabaContacts,
	PBA:  pbaContacts,
}

// Contacts returns the full list of a zone in display order. The returned
// slice is a copy; the tables themselves never change.
func Contacts(z Zone) []Contact {
	return slices.Clone(byZone[z])
}

// UrgentContacts returns the first MaxUrgent urgent contacts of a zone, in
// catalog order.
func UrgentContacts(z Zone) []Contact {
	out := make([]Contact, 0, MaxUrgent)
	for _, c := range byZone[z] {
		if len(out) == MaxUrgent {
			break
		}
		if c.Urgent {
			out = append(out, c)
		}
	}
	return out
}
