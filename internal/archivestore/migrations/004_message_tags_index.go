package migrations

const messageTagsIndexSQL = `
CREATE INDEX idx_message_tags_tag_tagged_at ON message_tags(tag_id, tagged_at DESC, message_id DESC);
`
