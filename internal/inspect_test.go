package internal

import (
	"groupchat/codec"
	"groupchat/domain"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *badger.DB {
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func put(t *testing.T, db *badger.DB, key string, row *codec.Row) {
	val, err := codec.Marshal(row)
	require.NoError(t, err)
	require.NoError(t, db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), val)
	}))
}

func TestScanRows_Hides_Password_Hash(t *testing.T) {
	req := require.New(t)
	db := openDB(t)
	put(t, db, "user:alice@example.com", codec.UserToRow(codec.StoredUser{
		ID:           "u1",
		Email:        "alice@example.com",
		PasswordHash: "secret-hash",
		CreatedAt:    time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}))
	put(t, db, "group:0000000000000000001", codec.GroupToRow(codec.StoredGroup{
		Group:     domain.Group{ID: 1, Name: "general"},
		CreatedBy: "u1",
	}))

	rows, err := ScanRows(db, "user:", nil)
	req.NoError(err)
	req.Len(rows, 1)
	req.Equal("user", rows[0].Kind)
	req.Equal("u1", rows[0].ID)
	req.Contains(rows[0].Detail, "email=alice@example.com")
	req.NotContains(rows[0].Detail, "secret-hash")

	rows, err = ScanRows(db, "group:", nil)
	req.NoError(err)
	req.Len(rows, 1)
	req.Equal("1", rows[0].ID)
	req.Contains(rows[0].Detail, "name=general")
}

func TestDefaultMapper_Raw_Entries(t *testing.T) {
	req := require.New(t)

	row := DefaultMapper("idx:group:name:general", nil)
	req.Equal("index", row.Kind)

	row = DefaultMapper("nocolon", []byte{1, 2, 3})
	req.Equal("raw", row.Kind)
	req.Equal("Size: 3 bytes", row.Detail)
}

func TestInspectHandler(t *testing.T) {
	req := require.New(t)
	db := openDB(t)
	put(t, db, "group:0000000000000000001", codec.GroupToRow(codec.StoredGroup{
		Group: domain.Group{ID: 1, Name: "general"},
	}))
	handler := NewInspectHandler(db, nil, func() map[string]any {
		return map[string]any{"Mode": "read-only"}
	}, "group:")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/inspect", nil))

	req.Equal(http.StatusOK, rec.Code)
	body := rec.Body.String()
	req.Contains(body, "name=general")
	req.Contains(body, "Mode: read-only")
}
