package querybuilder

import (
	"reflect"
	"testing"
)

func TestSelectToSQL(t *testing.T) {
	query, args, err := Select("*").
		From("prediction_snapshots").
		Where(
			Eq("match_id", "m1"),
			IsNull("deleted_at"),
		).
		OrderBy("created_at DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		t.Fatalf("build select: %v", err)
	}

	want := "SELECT * FROM prediction_snapshots WHERE match_id = $1 AND deleted_at IS NULL ORDER BY created_at DESC LIMIT 1"
	if query != want {
		t.Fatalf("query mismatch:\n got %q\nwant %q", query, want)
	}
	if !reflect.DeepEqual(args, []any{"m1"}) {
		t.Fatalf("args mismatch: %v", args)
	}
}

func TestSelectToSQL_MultipleEqPlaceholders(t *testing.T) {
	query, args, err := Select("teams").
		From("team_sets").
		Where(
			Eq("match_id", "m1"),
			Eq("variant", "top_pairs|Alpha|5"),
		).
		ToSQL()
	if err != nil {
		t.Fatalf("build select: %v", err)
	}

	want := "SELECT teams FROM team_sets WHERE match_id = $1 AND variant = $2"
	if query != want {
		t.Fatalf("query mismatch:\n got %q\nwant %q", query, want)
	}
	if !reflect.DeepEqual(args, []any{"m1", "top_pairs|Alpha|5"}) {
		t.Fatalf("args mismatch: %v", args)
	}
}

func TestSelectToSQL_Validation(t *testing.T) {
	if _, _, err := Select().From("team_sets").ToSQL(); err == nil {
		t.Fatalf("expected error for missing columns")
	}
	if _, _, err := Select("*").ToSQL(); err == nil {
		t.Fatalf("expected error for missing table")
	}
}

func TestInsertModel(t *testing.T) {
	model := struct {
		MatchID   string `db:"match_id"`
		Variant   string `db:"variant"`
		Teams     []byte `db:"teams"`
		CreatedAt int64  `db:"created_at"`
		Ignored   string
	}{
		MatchID:   "m1",
		Variant:   "top_pairs|Alpha|5",
		Teams:     []byte(`[]`),
		CreatedAt: 1700000000,
	}

	query, args, err := InsertModel("team_sets", model, "")
	if err != nil {
		t.Fatalf("build insert: %v", err)
	}

	want := "INSERT INTO team_sets (match_id, variant, teams, created_at) VALUES ($1, $2, $3, $4)"
	if query != want {
		t.Fatalf("query mismatch:\n got %q\nwant %q", query, want)
	}
	if len(args) != 4 {
		t.Fatalf("expected 4 args, got %d", len(args))
	}
	if args[0] != "m1" || args[3] != int64(1700000000) {
		t.Fatalf("args mismatch: %v", args)
	}
}

func TestInsertModel_Suffix(t *testing.T) {
	model := struct {
		MatchID string `db:"match_id"`
	}{MatchID: "m1"}

	query, _, err := InsertModel("team_sets", &model, "ON CONFLICT (match_id) DO NOTHING")
	if err != nil {
		t.Fatalf("build insert: %v", err)
	}

	want := "INSERT INTO team_sets (match_id) VALUES ($1) ON CONFLICT (match_id) DO NOTHING"
	if query != want {
		t.Fatalf("query mismatch:\n got %q\nwant %q", query, want)
	}
}

func TestInsertModel_Validation(t *testing.T) {
	if _, _, err := InsertModel("team_sets", (*struct{})(nil), ""); err == nil {
		t.Fatalf("expected error for nil model")
	}
	if _, _, err := InsertModel("team_sets", "not-a-struct", ""); err == nil {
		t.Fatalf("expected error for non-struct model")
	}
	if _, _, err := InsertModel("team_sets", struct{ Name string }{}, ""); err == nil {
		t.Fatalf("expected error for model without db tags")
	}
}
