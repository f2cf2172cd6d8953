package sqlite

// Schema is the SQL schema of the local event database.
const Schema = `
CREATE TABLE IF NOT EXISTS events (
    user_id        TEXT    NOT NULL,
    id             TEXT    NOT NULL,
    title          TEXT    NOT NULL,
    event_date     TEXT    NOT NULL,
    event_time     TEXT    NOT NULL DEFAULT '',
    event_type     TEXT    NOT NULL
                   CHECK(event_type IN ('benefic', 'challenging', 'neutral')),
    description    TEXT    NOT NULL DEFAULT '',
    score          INTEGER NOT NULL CHECK(score BETWEEN 0 AND 10),
    is_generated   INTEGER NOT NULL DEFAULT 0,
    is_bookmarked  INTEGER NOT NULL DEFAULT 0,
    timing_method  TEXT    NOT NULL DEFAULT '',
    details        TEXT    NOT NULL DEFAULT '{}',
    created_at     TEXT    NOT NULL,
    PRIMARY KEY (user_id, id)
);

CREATE INDEX IF NOT EXISTS idx_events_user_date ON events(user_id, event_date, event_time);
`
