package roster_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raporbot/internal/roster"
	"raporbot/internal/testsupport"
)

func TestSeedFromCSV(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	store := roster.NewStore(db)

	dir := t.TempDir()
	path := filepath.Join(dir, "roster.csv")
	content := "isim,kod,site\n" +
		"Cem Koca,ckoca,vatan\n" +
		"Ayşe Yılmaz,AYILMAZ,vatan\n" +
		"Cem Koca,ckoca,vatan\n" + // duplicate code is skipped
		"Mehmet Demir,mehmet.demir,hurriyet\n" +
		",boskayit\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	n, err := store.SeedFromCSV(path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	people, err := store.All()
	require.NoError(t, err)
	require.Len(t, people, 3)
	// Codes normalize to lowercase ASCII.
	assert.Equal(t, "ayilmaz", people[0].Code)
	assert.Equal(t, "Ayşe Yılmaz", people[0].Name)

	t.Run("reseed updates in place", func(t *testing.T) {
		path2 := filepath.Join(dir, "roster2.csv")
		require.NoError(t, os.WriteFile(path2, []byte("Cem Yeni Koca,ckoca,vatan\n"), 0o644))
		_, err := store.SeedFromCSV(path2)
		require.NoError(t, err)
		assert.Equal(t, "Cem Yeni Koca", store.LookupDisplayName("ckoca"))
	})

	t.Run("missing file is not an error", func(t *testing.T) {
		n, err := store.SeedFromCSV(filepath.Join(dir, "yok.csv"))
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})
}

func TestLookupDisplayName(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	store := roster.NewStore(db)
	testsupport.SeedPeople(t, db, []roster.Person{
		{Name: "Cem Koca", Code: "ckoca", Site: "vatan"},
		{Name: "Mehmet Demir", Code: "mdemir", Site: "vatan"},
	})

	assert.Equal(t, "Cem Koca", store.LookupDisplayName("ckoca"))
	assert.Equal(t, "Cem Koca", store.LookupDisplayName("CKOCA"))
	// Dotted variant collapses to the stored compact code.
	assert.Equal(t, "Mehmet Demir", store.LookupDisplayName("m.demir"))
	// Unknown codes come back unchanged.
	assert.Equal(t, "yokboyle", store.LookupDisplayName("yokboyle"))
}

func TestBySite(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	store := roster.NewStore(db)
	testsupport.SeedPeople(t, db, []roster.Person{
		{Name: "Cem Koca", Code: "ckoca", Site: "vatan"},
		{Name: "Zeynep Ak", Code: "zak", Site: "hurriyet"},
	})

	people, err := store.BySite("vatan")
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, "ckoca", people[0].Code)
}
