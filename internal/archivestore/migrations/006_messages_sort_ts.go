package migrations

const messagesSortTsSQL = `
ALTER TABLE messages ADD COLUMN sort_ts INTEGER NOT NULL DEFAULT 0;

UPDATE messages SET sort_ts = COALESCE(sent_at, received_at, 0);

CREATE INDEX idx_messages_thread_sort_ts ON messages(thread_id, sort_ts DESC, id DESC);
`
