package importer

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/untoldecay/goldenthread/internal/query"
	"github.com/untoldecay/goldenthread/internal/schemaprobe"
)

const messageProgressEvery = 5000

// MapSignalDB maps a decoded Signal SQLite database (foreignDB) into the
// archive schema inside tx, tolerating schema variants across Signal
// versions via schemaprobe. Matches map_signal_db in importer.rs: maps
// recipients, threads, sms/mms messages, delegates to MapAttachments and
// mapReactions, recomputes thread activity, and rebuilds message_fts.
// Returns the JSON stats payload recorded on the import row.
func MapSignalDB(ctx context.Context, foreignDB *sql.DB, tx *sql.Tx, framesDir, attachmentsDir string, key [32]byte, progress ProgressFunc) (string, error) {
	recipients, err := mapRecipients(ctx, foreignDB, tx)
	if err != nil {
		return "", fmt.Errorf("map recipients: %w", err)
	}

	threads, err := mapThreads(ctx, foreignDB, tx)
	if err != nil {
		return "", fmt.Errorf("map threads: %w", err)
	}

	smsCount, err := mapSMSMessages(ctx, foreignDB, tx, progress)
	if err != nil {
		return "", fmt.Errorf("map sms messages: %w", err)
	}

	mmsCount, err := mapMMSMessages(ctx, foreignDB, tx, progress)
	if err != nil {
		return "", fmt.Errorf("map mms messages: %w", err)
	}

	jobs, err := buildAttachmentJobs(ctx, foreignDB, tx, framesDir)
	if err != nil {
		return "", fmt.Errorf("build attachment jobs: %w", err)
	}
	attachFound, attachMissing, err := MapAttachments(ctx, tx, jobs, attachmentsDir, key, progress)
	if err != nil {
		return "", err
	}

	reactionCount, err := mapReactions(ctx, foreignDB, tx)
	if err != nil {
		return "", fmt.Errorf("map reactions: %w", err)
	}

	if err := query.UpdateThreadActivity(ctx, tx); err != nil {
		return "", fmt.Errorf("update thread activity: %w", err)
	}

	ftsCount, err := BuildMessageFTS(ctx, tx, progress)
	if err != nil {
		return "", fmt.Errorf("build fts: %w", err)
	}

	stats := fmt.Sprintf(
		`{"recipients":%d,"threads":%d,"sms":%d,"mms":%d,"attachments_found":%d,"attachments_missing":%d,"reactions":%d,"fts_indexed":%d}`,
		recipients, threads, smsCount, mmsCount, attachFound, attachMissing, reactionCount, ftsCount)
	return stats, nil
}

func mapRecipients(ctx context.Context, foreignDB *sql.DB, tx *sql.Tx) (int, error) {
	idCol, err := schemaprobe.PickColumn(foreignDB, "recipient", "_id", "recipient_id")
	if err != nil {
		return 0, err
	}
	if idCol == "" {
		return 0, nil
	}
	phoneCol, _ := schemaprobe.PickColumn(foreignDB, "recipient", "phone", "e164")
	profileCol, _ := schemaprobe.PickColumn(foreignDB, "recipient", "profile_joined_name", "signal_profile_name")
	contactCol, _ := schemaprobe.PickColumn(foreignDB, "recipient", "system_joined_name", "system_display_name")

	cols := []string{idCol}
	for _, c := range []string{phoneCol, profileCol, contactCol} {
		if c != "" {
			cols = append(cols, c)
		}
	}
	rows, err := foreignDB.QueryContext(ctx, `SELECT `+strings.Join(cols, ",")+` FROM recipient`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		dest := make([]any, len(cols))
		raw := make([]sql.NullString, len(cols))
		for i := range dest {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return count, err
		}

		id := raw[0].String
		var phone, profile, contact *string
		idx := 1
		if phoneCol != "" {
			phone = nullableOf(raw[idx])
			idx++
		}
		if profileCol != "" {
			profile = nullableOf(raw[idx])
			idx++
		}
		if contactCol != "" {
			contact = nullableOf(raw[idx])
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO recipients (id, phone, profile_name, contact_name) VALUES (?,?,?,?)`,
			"r:"+id, phone, profile, contact); err != nil {
			return count, err
		}
		count++
	}
	return count, rows.Err()
}

func nullableOf(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func mapThreads(ctx context.Context, foreignDB *sql.DB, tx *sql.Tx) (int, error) {
	ok, err := schemaprobe.TableExists(foreignDB, "thread")
	if err != nil || !ok {
		return 0, err
	}
	idCol, _ := schemaprobe.PickColumn(foreignDB, "thread", "_id")
	dateCol, _ := schemaprobe.PickColumn(foreignDB, "thread", "date")
	groupTitleCol, _ := schemaprobe.PickColumn(foreignDB, "thread", "group_title")
	systemNameCol, _ := schemaprobe.PickColumn(foreignDB, "thread", "system_display_name")
	profileNameCol, _ := schemaprobe.PickColumn(foreignDB, "thread", "signal_profile_name")
	phoneCol, _ := schemaprobe.PickColumn(foreignDB, "thread", "phone", "e164")
	if idCol == "" {
		return 0, nil
	}

	cols := []string{idCol}
	opt := []string{dateCol, groupTitleCol, systemNameCol, profileNameCol, phoneCol}
	for _, c := range opt {
		if c != "" {
			cols = append(cols, c)
		}
	}

	rows, err := foreignDB.QueryContext(ctx, `SELECT `+strings.Join(cols, ",")+` FROM thread`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		dest := make([]any, len(cols))
		raw := make([]sql.NullString, len(cols))
		for i := range dest {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return count, err
		}

		id := raw[0].String
		values := map[string]sql.NullString{}
		idx := 1
		for _, c := range opt {
			if c != "" {
				values[c] = raw[idx]
				idx++
			}
		}

		name := firstNonEmpty(values[groupTitleCol], values[systemNameCol], values[profileNameCol], values[phoneCol])
		var lastMessageAt *int64
		if v, ok := values[dateCol]; ok && v.Valid {
			lastMessageAt = parseInt64Ptr(v.String)
		}

		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO threads (id, name, last_message_at) VALUES (?,?,?)`,
			"t:"+id, name, lastMessageAt); err != nil {
			return count, err
		}
		count++
	}
	return count, rows.Err()
}

func firstNonEmpty(vals ...sql.NullString) *string {
	for _, v := range vals {
		if v.Valid && v.String != "" {
			s := v.String
			return &s
		}
	}
	return nil
}

func parseInt64Ptr(s string) *int64 {
	var n int64
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return nil
	}
	return &n
}

func mapSMSMessages(ctx context.Context, foreignDB *sql.DB, tx *sql.Tx, progress ProgressFunc) (int, error) {
	return mapMessageTable(ctx, foreignDB, tx, "sms", "sms", progress)
}

func mapMMSMessages(ctx context.Context, foreignDB *sql.DB, tx *sql.Tx, progress ProgressFunc) (int, error) {
	table := "mms"
	if ok, _ := schemaprobe.TableExists(foreignDB, "message"); ok {
		table = "message"
	}
	return mapMessageTable(ctx, foreignDB, tx, table, "mms", progress)
}

// mapMessageTable maps rows from a foreign sms/mms/message table into the
// archive's messages table, computing dedupe_key and quote linkage and
// reporting progress every messageProgressEvery rows.
func mapMessageTable(ctx context.Context, foreignDB *sql.DB, tx *sql.Tx, table, kind string, progress ProgressFunc) (int, error) {
	ok, err := schemaprobe.TableExists(foreignDB, table)
	if err != nil || !ok {
		return 0, err
	}

	idCol, _ := schemaprobe.PickColumn(foreignDB, table, "_id")
	threadCol, _ := schemaprobe.PickColumn(foreignDB, table, "thread_id")
	addressCol, _ := schemaprobe.PickColumn(foreignDB, table, "address", "recipient_id")
	dateCol, _ := schemaprobe.PickColumn(foreignDB, table, "date", "date_sent")
	dateReceivedCol, _ := schemaprobe.PickColumn(foreignDB, table, "date_received")
	typeCol, _ := schemaprobe.PickColumn(foreignDB, table, "type", "msg_box")
	bodyCol, _ := schemaprobe.PickColumn(foreignDB, table, "body")
	quoteIDCol, _ := schemaprobe.PickColumn(foreignDB, table, "quote_id")
	quoteBodyCol, _ := schemaprobe.PickColumn(foreignDB, table, "quote_body")
	quoteAuthorCol, _ := schemaprobe.PickColumn(foreignDB, table, "quote_author")
	viewOnceCol, _ := schemaprobe.PickColumn(foreignDB, table, "view_once", "revealed")

	if idCol == "" || threadCol == "" {
		return 0, nil
	}

	allCols := []string{idCol, threadCol}
	optCols := []string{addressCol, dateCol, dateReceivedCol, typeCol, bodyCol, quoteIDCol, quoteBodyCol, quoteAuthorCol, viewOnceCol}
	for _, c := range optCols {
		if c != "" {
			allCols = append(allCols, c)
		}
	}

	rows, err := foreignDB.QueryContext(ctx, `SELECT `+strings.Join(allCols, ",")+` FROM `+table)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	count, batchCount := 0, 0
	for rows.Next() {
		dest := make([]any, len(allCols))
		raw := make([]sql.NullString, len(allCols))
		for i := range dest {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return count, err
		}

		foreignID := parseInt64Default(raw[0].String, 0)
		threadID := "t:" + raw[1].String

		values := map[string]sql.NullString{}
		idx := 2
		for _, c := range optCols {
			if c != "" {
				values[c] = raw[idx]
				idx++
			}
		}

		var senderID *string
		if addressCol != "" && values[addressCol].Valid {
			s := "r:" + values[addressCol].String
			senderID = &s
		}
		var sentAt *int64
		if dateCol != "" {
			sentAt = parseInt64PtrNull(values[dateCol])
		}
		var receivedAt *int64
		if dateReceivedCol != "" {
			receivedAt = parseInt64PtrNull(values[dateReceivedCol])
		}
		msgTypeRaw := int64(0)
		if typeCol != "" {
			msgTypeRaw = parseInt64Default(values[typeCol].String, 0)
		}
		outgoing := IsOutgoingType(msgTypeRaw)
		var body *string
		if bodyCol != "" && values[bodyCol].Valid {
			b := values[bodyCol].String
			body = &b
		}
		isViewOnce := false
		if viewOnceCol != "" && values[viewOnceCol].Valid {
			isViewOnce = values[viewOnceCol].String == "1"
		}

		var quoteMessageID *string
		if quoteIDCol != "" && values[quoteIDCol].Valid {
			if qid := parseInt64Default(values[quoteIDCol].String, 0); qid > 0 {
				s := fmt.Sprintf("%s:%d", kind, qid)
				quoteMessageID = &s
			}
		}

		var metadataJSON *string
		if quoteBodyCol != "" || quoteAuthorCol != "" {
			qb, qa := values[quoteBodyCol], values[quoteAuthorCol]
			if qb.Valid || qa.Valid {
				m := fmt.Sprintf(`{"quote_body":%s,"quote_author":%s}`, jsonStringOrNull(qb), jsonStringOrNull(qa))
				metadataJSON = &m
			}
		}

		timestamp := int64(0)
		if sentAt != nil {
			timestamp = *sentAt
		} else if receivedAt != nil {
			timestamp = *receivedAt
		}
		senderForDedupe := ""
		if senderID != nil {
			senderForDedupe = *senderID
		}
		msgID := fmt.Sprintf("%s:%d", kind, foreignID)
		if foreignID <= 0 {
			msgID = ""
		}
		dedupeKey := DedupeKey(kind, foreignID, threadID, senderForDedupe, timestamp, fmt.Sprintf("%d", msgTypeRaw), outgoing, body)
		if msgID == "" {
			msgID = dedupeKey
		}

		res, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO messages
				(id, thread_id, sender_id, sent_at, received_at, type, body, is_outgoing, is_view_once, quote_message_id, metadata_json, dedupe_key)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
			msgID, threadID, senderID, sentAt, receivedAt, fmt.Sprintf("%d", msgTypeRaw), body,
			boolToInt(outgoing), boolToInt(isViewOnce), quoteMessageID, metadataJSON, dedupeKey)
		if err != nil {
			return count, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			count++
		}

		batchCount++
		if progress != nil && batchCount%messageProgressEvery == 0 {
			progress(fmt.Sprintf("%s: %d rows processed", table, batchCount))
		}
	}
	return count, rows.Err()
}

func jsonStringOrNull(s sql.NullString) string {
	if !s.Valid {
		return "null"
	}
	return fmt.Sprintf("%q", s.String)
}

func parseInt64Default(s string, def int64) int64 {
	if s == "" {
		return def
	}
	var n int64
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return def
	}
	return n
}

func parseInt64PtrNull(s sql.NullString) *int64 {
	if !s.Valid {
		return nil
	}
	return parseInt64Ptr(s.String)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func mapReactions(ctx context.Context, foreignDB *sql.DB, tx *sql.Tx) (int, error) {
	table := ""
	for _, candidate := range []string{"reaction", "reactions"} {
		if ok, _ := schemaprobe.TableExists(foreignDB, candidate); ok {
			table = candidate
			break
		}
	}
	if table == "" {
		return 0, nil
	}

	msgIDCol, _ := schemaprobe.PickColumn(foreignDB, table, "message_id", "mid")
	emojiCol, _ := schemaprobe.PickColumn(foreignDB, table, "emoji")
	authorCol, _ := schemaprobe.PickColumn(foreignDB, table, "author_id", "recipient_id")
	dateCol, _ := schemaprobe.PickColumn(foreignDB, table, "date", "date_sent", "timestamp", "reacted_at")
	if msgIDCol == "" || emojiCol == "" {
		return 0, nil
	}

	cols := []string{msgIDCol, emojiCol}
	optional := []string{authorCol, dateCol}
	for _, c := range optional {
		if c != "" {
			cols = append(cols, c)
		}
	}
	rows, err := foreignDB.QueryContext(ctx, `SELECT `+strings.Join(cols, ",")+` FROM `+table)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		dest := make([]any, len(cols))
		raw := make([]sql.NullString, len(cols))
		for i := range dest {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return count, err
		}

		msgForeign := raw[0].String
		emoji := raw[1].String

		values := map[string]sql.NullString{}
		idx := 2
		for _, c := range optional {
			if c != "" {
				values[c] = raw[idx]
				idx++
			}
		}

		recipientID := "r:unknown"
		if authorCol != "" && values[authorCol].Valid {
			recipientID = "r:" + values[authorCol].String
		}
		var reactedAt *int64
		if dateCol != "" {
			reactedAt = parseInt64PtrNull(values[dateCol])
		}

		messageID, ok := resolveMessageIDForeign(ctx, tx, msgForeign)
		if !ok {
			continue
		}

		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO reactions (message_id, recipient_id, emoji, reacted_at) VALUES (?,?,?,?)`,
			messageID, recipientID, emoji, reactedAt); err != nil {
			return count, err
		}
		count++
	}
	return count, rows.Err()
}

// resolveMessageIDForeign maps a bare foreign row id to whichever of
// "sms:<id>"/"mms:<id>" already landed in messages, since the reaction row
// itself doesn't say which source table it reacted to.
func resolveMessageIDForeign(ctx context.Context, tx *sql.Tx, foreignID string) (string, bool) {
	for _, kind := range []string{"sms", "mms"} {
		candidate := kind + ":" + foreignID
		var id string
		if err := tx.QueryRowContext(ctx, `SELECT id FROM messages WHERE id = ?`, candidate).Scan(&id); err == nil {
			return candidate, true
		}
	}
	return "", false
}

func buildAttachmentJobs(ctx context.Context, foreignDB *sql.DB, tx *sql.Tx, framesDir string) ([]AttachmentJob, error) {
	table := ""
	for _, candidate := range []string{"part", "attachment"} {
		if ok, _ := schemaprobe.TableExists(foreignDB, candidate); ok {
			table = candidate
			break
		}
	}
	if table == "" {
		return nil, nil
	}

	idCol, _ := schemaprobe.PickColumn(foreignDB, table, "_id")
	msgIDCol, _ := schemaprobe.PickColumn(foreignDB, table, "mid", "message_id")
	uniqueIDCol, _ := schemaprobe.PickColumn(foreignDB, table, "unique_id")
	mimeCol, _ := schemaprobe.PickColumn(foreignDB, table, "ct", "content_type")
	sizeCol, _ := schemaprobe.PickColumn(foreignDB, table, "data_size", "size")
	nameCol, _ := schemaprobe.PickColumn(foreignDB, table, "file_name", "filename", "fileName")
	widthCol, _ := schemaprobe.PickColumn(foreignDB, table, "width")
	heightCol, _ := schemaprobe.PickColumn(foreignDB, table, "height")
	durationCol, _ := schemaprobe.PickColumn(foreignDB, table, "duration", "duration_ms")
	if idCol == "" || msgIDCol == "" {
		return nil, nil
	}

	cols := []string{idCol, msgIDCol}
	opt := []string{uniqueIDCol, mimeCol, sizeCol, nameCol, widthCol, heightCol, durationCol}
	for _, c := range opt {
		if c != "" {
			cols = append(cols, c)
		}
	}

	rows, err := foreignDB.QueryContext(ctx, `SELECT `+strings.Join(cols, ",")+` FROM `+table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []AttachmentJob
	for rows.Next() {
		dest := make([]any, len(cols))
		raw := make([]sql.NullString, len(cols))
		for i := range dest {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		id := parseInt64Default(raw[0].String, 0)
		msgForeign := raw[1].String

		values := map[string]sql.NullString{}
		idx := 2
		for _, c := range opt {
			if c != "" {
				values[c] = raw[idx]
				idx++
			}
		}

		uniqueID := int64(-1)
		if uniqueIDCol != "" {
			uniqueID = parseInt64Default(values[uniqueIDCol].String, -1)
		}

		messageID, ok := resolveAttachmentMessageID(ctx, tx, msgForeign)
		if !ok {
			continue
		}

		job := AttachmentJob{
			MessageID:  messageID,
			SourcePath: AttachmentFrameFile(framesDir, id, uniqueID),
		}
		if mimeCol != "" && values[mimeCol].Valid {
			job.Mime = strPtr(values[mimeCol].String)
		}
		if sizeCol != "" && values[sizeCol].Valid {
			job.SizeBytes = parseInt64PtrNull(values[sizeCol])
		}
		if nameCol != "" && values[nameCol].Valid {
			job.OriginalFilename = strPtr(values[nameCol].String)
		}
		if widthCol != "" {
			job.Width = parseInt64PtrNull(values[widthCol])
		}
		if heightCol != "" {
			job.Height = parseInt64PtrNull(values[heightCol])
		}
		if durationCol != "" {
			job.DurationMs = parseInt64PtrNull(values[durationCol])
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// resolveAttachmentMessageID maps a part/attachment row's bare foreign mid
// to whichever of "mms:<id>"/"sms:<id>" already landed in messages; parts
// predominantly belong to the mms table so that namespace is tried first.
func resolveAttachmentMessageID(ctx context.Context, tx *sql.Tx, foreignID string) (string, bool) {
	for _, kind := range []string{"mms", "sms"} {
		candidate := kind + ":" + foreignID
		var id string
		if err := tx.QueryRowContext(ctx, `SELECT id FROM messages WHERE id = ?`, candidate).Scan(&id); err == nil {
			return candidate, true
		}
	}
	return "", false
}

func strPtr(s string) *string { return &s }
