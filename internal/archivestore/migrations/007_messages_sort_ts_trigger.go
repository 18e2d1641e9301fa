package migrations

const messagesSortTsTriggerSQL = `
CREATE TRIGGER trg_messages_sort_ts AFTER INSERT ON messages
WHEN NEW.sort_ts IS NULL OR NEW.sort_ts = 0
BEGIN
	UPDATE messages SET sort_ts = COALESCE(NEW.sent_at, NEW.received_at, 0) WHERE id = NEW.id;
END;
`
