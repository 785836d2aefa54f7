package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/storage"
)

func TestSaveAndRead(t *testing.T) {
	store, err := storage.NewTemplateStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save([]byte("docx bytes"), "exercise.docx")
	require.NoError(t, err)

	got, err := store.Read("exercise.docx")
	require.NoError(t, err)
	assert.Equal(t, []byte("docx bytes"), got)
}

func TestReadMissingTemplate(t *testing.T) {
	store, err := storage.NewTemplateStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Read("nope.docx")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSaveRejectsBadNames(t *testing.T) {
	store, err := storage.NewTemplateStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{
		"",
		"../escape.docx",
		"dir/nested.docx",
		`dir\nested.docx`,
		"notes.txt",
		"plain",
	} {
		_, err := store.Save([]byte("x"), name)
		assert.ErrorIs(t, err, storage.ErrInvalidFilename, "name %q", name)
	}
}

func TestListFiltersAndSorts(t *testing.T) {
	store, err := storage.NewTemplateStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save([]byte("b"), "beta.docx")
	require.NoError(t, err)
	_, err = store.Save([]byte("a"), "alpha.docx")
	require.NoError(t, err)

	templates, err := store.List()
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "alpha.docx", templates[0].Name)
	assert.Equal(t, "beta.docx", templates[1].Name)
	assert.Equal(t, int64(1), templates[0].Size)
}
