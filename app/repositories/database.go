package repositories

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	username      TEXT    NOT NULL UNIQUE,
	email         TEXT    NOT NULL,
	first_name    TEXT    NOT NULL DEFAULT '',
	last_name     TEXT    NOT NULL DEFAULT '',
	password_hash TEXT    NOT NULL DEFAULT '',
	created_at    TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	title        TEXT    NOT NULL,
	description  TEXT    NOT NULL,
	slug         TEXT    NOT NULL UNIQUE,
	is_published BOOLEAN NOT NULL DEFAULT 1,
	created_at   TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS locations (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	name         TEXT    NOT NULL,
	is_published BOOLEAN NOT NULL DEFAULT 1,
	created_at   TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS posts (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	title        TEXT    NOT NULL,
	text         TEXT    NOT NULL,
	pub_date     TIMESTAMP NOT NULL,
	image        TEXT    NOT NULL DEFAULT '',
	is_published BOOLEAN NOT NULL DEFAULT 1,
	created_at   TIMESTAMP NOT NULL,
	author_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	location_id  INTEGER REFERENCES locations(id) ON DELETE SET NULL,
	category_id  INTEGER REFERENCES categories(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS comments (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	text       TEXT    NOT NULL,
	created_at TIMESTAMP NOT NULL,
	post_id    INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
	author_id  INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_posts_pub_date ON posts(pub_date);
CREATE INDEX IF NOT EXISTS idx_posts_author ON posts(author_id);
CREATE INDEX IF NOT EXISTS idx_posts_category ON posts(category_id);
CREATE INDEX IF NOT EXISTS idx_comments_post ON comments(post_id);
`

// Database wraps the SQLite connection shared by all repositories.
type Database struct {
	db       *sql.DB
	path     string
	isTestDB bool
}

// NewDatabase opens (and if necessary creates) the SQLite database at path.
// An empty path creates a throwaway database in a temp directory, used by
// tests for isolation.
func NewDatabase(path string) (*Database, error) {
	isTest := false
	if path == "" {
		tempDir, err := os.MkdirTemp("", "pressroom_test_db_")
		if err != nil {
			return nil, fmt.Errorf("error creating temp dir: %v", err)
		}
		path = filepath.Join(tempDir, "pressroom.db")
		isTest = true
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("error creating database dir: %v", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %v", err)
	}

	return &Database{db: db, path: path, isTestDB: isTest}, nil
}

func (d *Database) Close() error {
	if err := d.db.Close(); err != nil {
		return err
	}
	if d.isTestDB {
		if err := os.RemoveAll(filepath.Dir(d.path)); err != nil {
			return fmt.Errorf("failed to cleanup test database: %v", err)
		}
	}
	return nil
}

func (d *Database) Ping() error {
	return d.db.Ping()
}

// NewUserRepository returns the SQLite-backed user repository.
func (d *Database) NewUserRepository() UserRepository { return &userRepository{db: d.db} }

// NewCategoryRepository returns the SQLite-backed category repository.
func (d *Database) NewCategoryRepository() CategoryRepository { return &categoryRepository{db: d.db} }

// NewLocationRepository returns the SQLite-backed location repository.
func (d *Database) NewLocationRepository() LocationRepository { return &locationRepository{db: d.db} }

// NewPostRepository returns the SQLite-backed post repository.
func (d *Database) NewPostRepository() PostRepository { return &postRepository{db: d.db} }

// NewCommentRepository returns the SQLite-backed comment repository.
func (d *Database) NewCommentRepository() CommentRepository { return &commentRepository{db: d.db} }
