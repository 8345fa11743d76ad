package migrations

import "testing"

func TestMigrations_OrderedAndUnique(t *testing.T) {
	all := Migrations()
	if len(all) == 0 {
		t.Fatal("no migrations defined")
	}
	seen := map[string]bool{}
	prev := ""
	for _, m := range all {
		if m.Up == nil {
			t.Errorf("migration %s has no Up", m.Version)
		}
		if seen[m.Version] {
			t.Errorf("duplicate version %s", m.Version)
		}
		if m.Version <= prev {
			t.Errorf("version %s out of order after %s", m.Version, prev)
		}
		seen[m.Version] = true
		prev = m.Version
	}
}
