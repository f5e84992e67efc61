package database

import (
	"fmt"
	"log/slog"
)

// findOrCreateConversationSQL installs the atomic pair lookup used as the
// primary path by conversation.Repository.GetOrCreate. Ordering inside the
// function (LEAST/GREATEST) must agree with conversation.CanonicalPair.
const findOrCreateConversationSQL = `
CREATE OR REPLACE FUNCTION find_or_create_conversation(p1 text, p2 text)
RETURNS uuid AS $$
DECLARE
    lo  text := LEAST(p1, p2);
    hi  text := GREATEST(p1, p2);
    cid uuid;
BEGIN
    SELECT id INTO cid FROM conversations
    WHERE participant_1 = lo AND participant_2 = hi;

    IF cid IS NULL THEN
        INSERT INTO conversations (participant_1, participant_2)
        VALUES (lo, hi)
        ON CONFLICT (participant_1, participant_2)
        DO UPDATE SET participant_1 = EXCLUDED.participant_1
        RETURNING id INTO cid;
    END IF;

    RETURN cid;
END;
$$ LANGUAGE plpgsql;
`

// Change-stream triggers. Payloads carry identifiers only; subscribers
// re-fetch the canonical row before dispatch.
const notifyTriggersSQL = `
CREATE OR REPLACE FUNCTION notify_message_event() RETURNS trigger AS $$
BEGIN
    PERFORM pg_notify('message_events', json_build_object(
        'op', TG_OP,
        'id', NEW.id,
        'conversation_id', NEW.conversation_id,
        'sender_id', NEW.sender_id
    )::text);
    RETURN NEW;
END;
$$ LANGUAGE plpgsql;

CREATE OR REPLACE FUNCTION notify_conversation_event() RETURNS trigger AS $$
DECLARE
    rec conversations%ROWTYPE;
BEGIN
    IF TG_OP = 'DELETE' THEN
        rec := OLD;
    ELSE
        rec := NEW;
    END IF;
    PERFORM pg_notify('conversation_events', json_build_object(
        'op', TG_OP,
        'id', rec.id,
        'participant_1', rec.participant_1,
        'participant_2', rec.participant_2
    )::text);
    RETURN rec;
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS messages_notify ON messages;
CREATE TRIGGER messages_notify
    AFTER INSERT OR UPDATE ON messages
    FOR EACH ROW EXECUTE FUNCTION notify_message_event();

DROP TRIGGER IF EXISTS conversations_notify ON conversations;
CREATE TRIGGER conversations_notify
    AFTER INSERT OR UPDATE OR DELETE ON conversations
    FOR EACH ROW EXECUTE FUNCTION notify_conversation_event();
`

// Migrate provisions tables, the pair-uniqueness index, the find-or-create
// procedure and the notification triggers. Until this has run, repositories
// report ErrSchemaNotProvisioned for the affected operations.
func (db *Database) Migrate() error {
	if err := db.AutoMigrate(&User{}, &Conversation{}, &Message{}, &Follow{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := db.Exec(findOrCreateConversationSQL).Error; err != nil {
		return fmt.Errorf("failed to install find_or_create_conversation: %w", err)
	}

	if err := db.Exec(notifyTriggersSQL).Error; err != nil {
		return fmt.Errorf("failed to install notification triggers: %w", err)
	}

	slog.Info("database migration completed")
	return nil
}
