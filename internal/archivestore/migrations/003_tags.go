package migrations

const tagsSQL = `
CREATE TABLE tags (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	color TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	display_order INTEGER NOT NULL
);

CREATE TABLE message_tags (
	message_id TEXT NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
	tag_id TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
	tagged_at INTEGER NOT NULL,
	PRIMARY KEY (message_id, tag_id)
);

CREATE INDEX idx_message_tags_tag ON message_tags(tag_id);
`
