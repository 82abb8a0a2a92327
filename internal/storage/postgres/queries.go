package postgres

// SQL for taxonomy snapshot persistence.

const (
	// querySaveSnapshot stores one immutable parse result. The document
	// column is the full taxonomy as JSONB.
	querySaveSnapshot = `
		INSERT INTO taxonomy_snapshots (id, source_id, document, saved_at)
		VALUES ($1, $2, $3, $4)
	`

	// queryLatestSnapshot fetches the most recent parse for a source.
	queryLatestSnapshot = `
		SELECT id, source_id, document, saved_at
		FROM taxonomy_snapshots
		WHERE source_id = $1
		ORDER BY saved_at DESC, id DESC
		LIMIT 1
	`

	// queryListSnapshots pages snapshot metadata newest first, without
	// loading the document bodies.
	queryListSnapshots = `
		SELECT id, source_id, saved_at
		FROM taxonomy_snapshots
		WHERE source_id = $1
		ORDER BY saved_at DESC, id DESC
		LIMIT $2
	`
)
