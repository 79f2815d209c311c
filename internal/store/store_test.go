package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/A-zanke/alumni-matcher/internal/profile"
)

const exportFixture = `{
  "users": [
    {"_id": "s1", "name": "Student One", "department": "Computer Science", "skills": ["Go"], "role": "student"},
    {"_id": "a1", "name": "Alum One", "department": "CSE", "graduationYear": 2020, "skills": ["Go", "Rust"], "role": "Alumni"},
    {"id": "a2", "name": "Alum Two", "department": "Civil", "skills": "none", "role": " alumni "},
    {"_id": "x1", "name": "No Role"}
  ]
}`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestJSONStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s, err := OpenJSON(writeFixture(t, exportFixture))
	require.NoError(t, err)
	defer s.Close()

	alumni, err := s.Alumni(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2"}, alumni.IDs())
	assert.Equal(t, "2020", alumni.Items[0].GraduationYear)
	assert.Empty(t, alumni.Items[1].Skills)

	students, err := s.Students(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "x1"}, students.IDs())

	student, err := s.Student(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, student)
	assert.Equal(t, "Student One", student.Name)

	missing, err := s.Student(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	assert.Equal(t, 4, s.All().Len())
}

func TestParseDocuments(t *testing.T) {
	t.Parallel()

	docs, err := ParseDocuments([]byte(`[{"_id": "a"}, {"_id": "b"}]`))
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	_, err = ParseDocuments([]byte(`{"people": []}`))
	assert.Error(t, err)

	_, err = ParseDocuments([]byte(`42`))
	assert.Error(t, err)

	_, err = ParseDocuments([]byte(`{`))
	assert.Error(t, err)
}

func TestOpenJSONErrors(t *testing.T) {
	t.Parallel()

	_, err := OpenJSON("  ")
	assert.Error(t, err)

	_, err = OpenJSON(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)

	_, err = OpenJSON(writeFixture(t, `[{"_id": "a", "skills": {"nested": true}, "name": {"first": "Asha"}}]`))
	var decodeErr *profile.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "a", decodeErr.ID)
}

func TestSQLiteImportAndQuery(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	src, err := OpenJSON(writeFixture(t, exportFixture))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "data", "profiles.db")
	s, err := OpenSQLite(ctx, path, nil)
	require.NoError(t, err)

	written, err := s.Import(ctx, src.All())
	require.NoError(t, err)
	assert.Equal(t, 4, written)

	alumni, err := s.Alumni(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2"}, alumni.IDs())
	assert.Equal(t, []string{"Go", "Rust"}, alumni.Items[0].Skills)

	students, err := s.Students(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "x1"}, students.IDs())

	// re-import replaces rows instead of duplicating them
	updated := &profile.Profiles{Items: []*profile.Profile{
		{ID: "s1", Name: "Renamed", Role: "student"},
		{Name: "no id"},
	}}
	written, err = s.Import(ctx, updated)
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	student, err := s.Student(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, student)
	assert.Equal(t, "Renamed", student.Name)

	missing, err := s.Student(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, s.Close())

	// reopening must not re-run applied migrations
	again, err := OpenSQLite(ctx, path, nil)
	require.NoError(t, err)
	defer again.Close()

	students, err = again.Students(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, students.Len())
	assert.Equal(t, "sqlite:"+path, again.Name())
}

func TestOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	_, err := Open(ctx, Config{Kind: "redis"}, nil)
	assert.ErrorContains(t, err, "unsupported store kind")

	_, err = Open(ctx, Config{Kind: KindMongo}, nil)
	assert.ErrorContains(t, err, "mongo uri is not configured")

	_, err = Open(ctx, Config{Kind: KindSQLite}, nil)
	assert.Error(t, err)

	s, err := Open(ctx, Config{Kind: " JSON ", JSON: JSONConfig{Path: writeFixture(t, `[]`)}}, nil)
	require.NoError(t, err)
	assert.Contains(t, s.Name(), "json:")
}

func TestDatabaseName(t *testing.T) {
	t.Setenv("MONGO_DB_NAME", "")

	tests := []struct {
		name       string
		uri        string
		configured string
		expect     string
	}{
		{name: "from uri", uri: "mongodb://localhost:27017/alumni?retryWrites=true", configured: "other", expect: "alumni"},
		{name: "configured", uri: "mongodb://localhost:27017", configured: "campus", expect: "campus"},
		{name: "default", uri: "mongodb://localhost:27017/", expect: "test"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := databaseName(tt.uri, tt.configured)
			require.NoError(t, err)
			assert.Equal(t, tt.expect, got)
		})
	}

	t.Setenv("MONGO_DB_NAME", "from-env")
	got, err := databaseName("mongodb://localhost:27017", "")
	require.NoError(t, err)
	assert.Equal(t, "from-env", got)

	_, err = databaseName("http://localhost", "")
	assert.Error(t, err)
}

func TestNormalizeDocument(t *testing.T) {
	t.Parallel()

	oid := primitive.NewObjectID()
	doc := normalizeDocument(bson.M{
		"_id":    oid,
		"skills": bson.A{"Go", "SQL"},
		"meta":   bson.D{{Key: "owner", Value: oid}},
	})

	assert.Equal(t, oid.Hex(), doc["_id"])
	assert.Equal(t, []any{"Go", "SQL"}, doc["skills"])
	assert.Equal(t, map[string]any{"owner": oid.Hex()}, doc["meta"])

	p, err := profile.Decode(doc)
	require.NoError(t, err)
	assert.Equal(t, oid.Hex(), p.ID)
	assert.Equal(t, []string{"Go", "SQL"}, p.Skills)
}
