package postgres

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_users_and_requests", UpSQL: migration001Up, DownSQL: migration001Down},
		{Version: 2, Name: "create_availability_slots", UpSQL: migration002Up, DownSQL: migration002Down},
		{Version: 3, Name: "create_mentorship_sessions", UpSQL: migration003Up, DownSQL: migration003Down},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: USERS AND MENTORSHIP REQUESTS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    name VARCHAR(100) NOT NULL DEFAULT '',
    email VARCHAR(255) NOT NULL UNIQUE,
    role VARCHAR(10) NOT NULL,
    timezone VARCHAR(64) NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_role CHECK (role IN ('STUDENT', 'ALUMNI'))
);

CREATE TABLE IF NOT EXISTS mentorship_requests (
    id TEXT PRIMARY KEY,
    student_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    alumni_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    message TEXT NOT NULL,
    status VARCHAR(10) NOT NULL DEFAULT 'PENDING',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    responded_at TIMESTAMP WITH TIME ZONE,

    CONSTRAINT valid_request_status CHECK (status IN ('PENDING', 'ACCEPTED', 'REJECTED')),
    CONSTRAINT no_self_request CHECK (student_id <> alumni_id)
);

-- At most one open request per pair
CREATE UNIQUE INDEX IF NOT EXISTS idx_requests_one_pending
    ON mentorship_requests(student_id, alumni_id) WHERE status = 'PENDING';

CREATE INDEX IF NOT EXISTS idx_requests_student ON mentorship_requests(student_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_requests_alumni ON mentorship_requests(alumni_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_requests_accepted
    ON mentorship_requests(student_id, alumni_id) WHERE status = 'ACCEPTED';
`

const migration001Down = `
DROP TABLE IF EXISTS mentorship_requests;
DROP TABLE IF EXISTS users;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: AVAILABILITY SLOTS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
CREATE TABLE IF NOT EXISTS availability_slots (
    id TEXT PRIMARY KEY,
    mentor_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    day_of_week SMALLINT NOT NULL,
    start_time CHAR(5) NOT NULL,
    end_time CHAR(5) NOT NULL,
    location VARCHAR(10) NOT NULL,
    meeting_type VARCHAR(10) NOT NULL,
    meeting_link TEXT NOT NULL DEFAULT '',
    venue TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_day CHECK (day_of_week BETWEEN 0 AND 6),
    CONSTRAINT valid_clock CHECK (start_time ~ '^[0-2][0-9]:[0-5][0-9]$' AND end_time ~ '^[0-2][0-9]:[0-5][0-9]$'),
    CONSTRAINT same_day CHECK (start_time < end_time)
);

CREATE INDEX IF NOT EXISTS idx_slots_mentor_day ON availability_slots(mentor_id, day_of_week);
`

const migration002Down = `
DROP TABLE IF EXISTS availability_slots;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: MENTORSHIP SESSIONS
// The exclusion constraints enforce the 15 minute buffer in storage. Each
// SCHEDULED session occupies [start_time, blocked_until) where blocked_until
// is end_time plus the buffer, written by the application because
// timestamptz arithmetic is not immutable.
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
CREATE EXTENSION IF NOT EXISTS btree_gist;

CREATE TABLE IF NOT EXISTS mentorship_sessions (
    id TEXT PRIMARY KEY,
    student_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    mentor_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    request_id TEXT REFERENCES mentorship_requests(id) ON DELETE SET NULL,

    start_time TIMESTAMP WITH TIME ZONE NOT NULL,
    end_time TIMESTAMP WITH TIME ZONE NOT NULL,
    blocked_until TIMESTAMP WITH TIME ZONE NOT NULL,
    timezone VARCHAR(64) NOT NULL,
    duration INTEGER NOT NULL,
    status VARCHAR(10) NOT NULL DEFAULT 'SCHEDULED',

    location VARCHAR(10) NOT NULL,
    meeting_type VARCHAR(10) NOT NULL,
    meeting_link TEXT NOT NULL DEFAULT '',
    venue TEXT NOT NULL DEFAULT '',

    title VARCHAR(200) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    agenda TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    feedback TEXT NOT NULL DEFAULT '',
    student_feedback TEXT NOT NULL DEFAULT '',
    mentor_rating SMALLINT,
    student_rating SMALLINT,

    reminder_tags TEXT[] NOT NULL DEFAULT '{}',
    reminders_sent TIMESTAMP WITH TIME ZONE[] NOT NULL DEFAULT '{}',
    last_modified_by TEXT NOT NULL DEFAULT '',
    completed_at TIMESTAMP WITH TIME ZONE,
    cancelled_at TIMESTAMP WITH TIME ZONE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_session_status CHECK (status IN ('SCHEDULED', 'COMPLETED', 'CANCELLED')),
    CONSTRAINT valid_range CHECK (start_time < end_time AND end_time < blocked_until),
    CONSTRAINT valid_mentor_rating CHECK (mentor_rating IS NULL OR mentor_rating BETWEEN 1 AND 5),
    CONSTRAINT valid_student_rating CHECK (student_rating IS NULL OR student_rating BETWEEN 1 AND 5),
    CONSTRAINT no_self_session CHECK (student_id <> mentor_id),

    CONSTRAINT mentor_no_overlap EXCLUDE USING gist (
        mentor_id WITH =,
        tstzrange(start_time, blocked_until) WITH &&
    ) WHERE (status = 'SCHEDULED'),

    CONSTRAINT student_no_overlap EXCLUDE USING gist (
        student_id WITH =,
        tstzrange(start_time, blocked_until) WITH &&
    ) WHERE (status = 'SCHEDULED')
);

CREATE INDEX IF NOT EXISTS idx_sessions_student_start ON mentorship_sessions(student_id, start_time DESC);
CREATE INDEX IF NOT EXISTS idx_sessions_mentor_start ON mentorship_sessions(mentor_id, start_time DESC);
CREATE INDEX IF NOT EXISTS idx_sessions_upcoming ON mentorship_sessions(start_time) WHERE status = 'SCHEDULED';
`

const migration003Down = `
DROP TABLE IF EXISTS mentorship_sessions;
`
