package migrations

const attachmentSizeBucketSQL = `
ALTER TABLE attachments ADD COLUMN size_bucket INTEGER;

UPDATE attachments SET size_bucket = CASE
	WHEN size_bytes IS NULL THEN NULL
	WHEN size_bytes < 1048576 THEN 0
	WHEN size_bytes < 10485760 THEN 1
	ELSE 2
END;

CREATE INDEX idx_attachments_message_size_bucket ON attachments(message_id, size_bucket);
`
