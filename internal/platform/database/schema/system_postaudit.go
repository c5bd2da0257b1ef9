package schema

// PostAuditEntryTable represents the 'system.postauditentry' table.
// Rows are inserted exclusively by database triggers on core.post;
// application code only ever reads from it.
type PostAuditEntryTable struct {
	Table        string
	ID           string
	PostID       string
	OccurredAt   string
	Entity       string
	Operation    string
	Field        string
	OldValue     string
	NewValue     string
}

// PostAuditEntry is the schema definition for system.postauditentry
var PostAuditEntry = PostAuditEntryTable{
	Table:      "system.postauditentry",
	ID:         "id",
	PostID:     "postid",
	OccurredAt: "occurredatutc",
	Entity:     "entity",
	Operation:  "operation",
	Field:      "field",
	OldValue:   "oldvalue",
	NewValue:   "newvalue",
}

func (t PostAuditEntryTable) Columns() []string {
	return []string{t.ID, t.PostID, t.OccurredAt, t.Entity, t.Operation, t.Field, t.OldValue, t.NewValue}
}
