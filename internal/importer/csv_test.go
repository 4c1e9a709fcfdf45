package importer_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"brainquiz/internal/app"
	"brainquiz/internal/domain"
	"brainquiz/internal/importer"
	"brainquiz/internal/infra/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `number,question,ans1,ans2,ans3,ans4,correct
1,What is 2 + 2?,3,4,5,6,B
7,"Capital of France, in one word?",Paris,Lyon,Nice,Lille,a
`

func TestLoadInsertsAndRenumbers(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuestionStore()

	report, err := importer.Load(ctx, strings.NewReader(sample), app.NewQuestionService(store))
	require.NoError(t, err)
	assert.Equal(t, importer.Report{Inserted: 2}, report)

	questions, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, 1, questions[0].Number)
	assert.Equal(t, 2, questions[1].Number)
	assert.Equal(t, "Capital of France, in one word?", questions[1].Text)
	assert.Equal(t, "A", questions[1].Correct)
}

func TestLoadSkipsDuplicates(t *testing.T) {
	ctx := context.Background()
	service := app.NewQuestionService(memory.NewQuestionStore())

	_, err := importer.Load(ctx, strings.NewReader(sample), service)
	require.NoError(t, err)

	report, err := importer.Load(ctx, strings.NewReader(sample), service)
	require.NoError(t, err)
	assert.Equal(t, importer.Report{Duplicates: 2}, report)
}

func TestLoadReportsBadRecords(t *testing.T) {
	ctx := context.Background()
	service := app.NewQuestionService(memory.NewQuestionStore())

	_, err := importer.Load(ctx, strings.NewReader("1,Too few,a,b\n"), service)
	assert.Error(t, err)

	report, err := importer.Load(ctx, strings.NewReader("1,Q one?,a,b,c,d,A\n2,Q two?,a,b,c,d,E\n"), service)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "line 2")
	assert.Equal(t, 1, report.Inserted)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	report, err := importer.LoadFile(context.Background(), path, app.NewQuestionService(memory.NewQuestionStore()))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Inserted)

	_, err = importer.LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), nil)
	assert.Error(t, err)
}
