package submission

import (
	"strings"
	"testing"
)

// The upsert must key on external_id and report whether an existing row was
// overwritten, so webhook replays stay idempotent.
func TestUpsertSubmissionQueryKeysOnExternalID(t *testing.T) {
	if !strings.Contains(upsertSubmissionQuery, "ON CONFLICT (external_id) DO UPDATE") {
		t.Fatal("upsert must resolve conflicts on external_id")
	}
	if !strings.Contains(upsertSubmissionQuery, "(xmax <> 0) AS replaced") {
		t.Fatal("upsert must report whether a prior row was replaced")
	}
}

func TestLatestSubmissionQueryOrdersByFinishedAtWithIDTieBreak(t *testing.T) {
	if !strings.Contains(latestSubmissionQuery, "ORDER BY finished_at DESC, id DESC") {
		t.Fatal("latest submission must order by finished_at with id as tie-break")
	}
	if !strings.Contains(latestSubmissionQuery, "LIMIT 1") {
		t.Fatal("latest submission must select a single row")
	}
	if !strings.Contains(latestSubmissionQuery, "email = $1") {
		t.Fatal("latest submission must be scoped to one email")
	}
}
