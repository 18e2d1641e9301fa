package migrations

const initialSchemaSQL = `
CREATE TABLE imports (
	id TEXT PRIMARY KEY,
	imported_at INTEGER NOT NULL,
	source_filename TEXT NOT NULL,
	source_hash TEXT NOT NULL,
	detected_version TEXT,
	status TEXT NOT NULL CHECK (status IN ('running', 'success', 'failed')),
	stats_json TEXT
);

CREATE TABLE threads (
	id TEXT PRIMARY KEY,
	name TEXT,
	last_message_at INTEGER,
	avatar_attachment_hash TEXT
);

CREATE TABLE recipients (
	id TEXT PRIMARY KEY,
	phone TEXT,
	profile_name TEXT,
	contact_name TEXT
);

CREATE TABLE thread_members (
	thread_id TEXT NOT NULL REFERENCES threads(id) ON DELETE CASCADE,
	recipient_id TEXT NOT NULL REFERENCES recipients(id) ON DELETE CASCADE,
	PRIMARY KEY (thread_id, recipient_id)
);

CREATE TABLE messages (
	id TEXT PRIMARY KEY,
	thread_id TEXT NOT NULL REFERENCES threads(id) ON DELETE CASCADE,
	sender_id TEXT REFERENCES recipients(id),
	sent_at INTEGER,
	received_at INTEGER,
	type TEXT NOT NULL,
	body TEXT,
	is_outgoing INTEGER NOT NULL DEFAULT 0,
	is_view_once INTEGER NOT NULL DEFAULT 0,
	quote_message_id TEXT,
	metadata_json TEXT,
	dedupe_key TEXT NOT NULL UNIQUE
);

CREATE INDEX idx_messages_thread ON messages(thread_id);

CREATE TABLE attachments (
	id TEXT PRIMARY KEY,
	message_id TEXT NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
	sha256 TEXT NOT NULL,
	mime TEXT,
	size_bytes INTEGER,
	original_filename TEXT,
	kind TEXT NOT NULL CHECK (kind IN ('image', 'video', 'audio', 'file')),
	width INTEGER,
	height INTEGER,
	duration_ms INTEGER,
	UNIQUE (message_id, sha256)
);

CREATE TABLE reactions (
	message_id TEXT NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
	recipient_id TEXT NOT NULL,
	emoji TEXT NOT NULL,
	reacted_at INTEGER,
	PRIMARY KEY (message_id, recipient_id, emoji)
);

CREATE VIRTUAL TABLE message_fts USING fts5(
	message_id UNINDEXED,
	thread_id UNINDEXED,
	sender_id UNINDEXED,
	body
);
`
