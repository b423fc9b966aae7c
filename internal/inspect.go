package internal

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"groupchat/codec"
	"html/template"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"google.golang.org/protobuf/types/known/structpb"
)

//go:embed inspect.html
var templatesFS embed.FS

// hiddenColumns never leave the store.
var hiddenColumns = []string{codec.ColPasswordHash}

type InspectRow struct {
	Key       string
	Kind      string
	ID        string
	CreatedAt string
	Detail    string
}

type RowMapper func(key string, val []byte) InspectRow
type StatsProvider func() map[string]any

type PageData struct {
	Prefix string
	Items  []InspectRow
	Stats  map[string]any
}

// ScanRows maps every entry whose key starts with prefix.
func ScanRows(db *badger.DB, prefix string, mapper RowMapper) ([]InspectRow, error) {
	if mapper == nil {
		mapper = DefaultMapper
	}
	var rows []InspectRow
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			item := it.Item()
			key := string(item.Key())
			err := item.Value(func(val []byte) error {
				rows = append(rows, mapper(key, val))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return rows, err
}

// NewInspectHandler serves the store content as an html page, ?prefix= selects the keys.
func NewInspectHandler(db *badger.DB, mapper RowMapper, stats StatsProvider, defaultPrefix string) http.Handler {
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = defaultPrefix
		}
		data := PageData{Prefix: prefix, Stats: make(map[string]any)}
		if stats != nil {
			data.Stats = stats()
		}
		items, err := ScanRows(db, prefix, mapper)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		data.Items = items
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})
}

// ServeInspect blocks until ctx is done.
func ServeInspect(ctx context.Context, addr string, handler http.Handler) error {
	mux := http.NewServeMux()
	mux.Handle("/inspect", handler)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errChan := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// DefaultMapper decodes a stored row. Index and sequence entries are shown raw.
func DefaultMapper(key string, val []byte) InspectRow {
	row := InspectRow{
		Key:       key,
		Kind:      "raw",
		ID:        "-",
		CreatedAt: "--:--:--",
		Detail:    fmt.Sprintf("Size: %d bytes", len(val)),
	}
	if strings.HasPrefix(key, "idx:") || strings.HasPrefix(key, "seq:") {
		row.Kind = "index"
		return row
	}
	kind, _, ok := strings.Cut(key, ":")
	if !ok {
		return row
	}
	decoded, err := codec.Unmarshal(val)
	if err != nil {
		return row
	}
	row.Kind = kind
	if id, err := codec.Int(decoded, codec.ColID); err == nil {
		row.ID = fmt.Sprint(id)
	} else if id, err := codec.String(decoded, codec.ColID); err == nil {
		row.ID = id
	}
	if at, err := codec.Time(decoded, codec.ColCreatedAt); err == nil {
		row.CreatedAt = at.Local().Format(time.DateTime)
	}
	row.Detail = describe(decoded)
	return row
}

// describe lists the columns as name=value, sorted by name.
func describe(row *codec.Row) string {
	names := make([]string, 0, len(row.GetFields()))
	for name := range row.GetFields() {
		if name == codec.ColID || name == codec.ColCreatedAt || slices.Contains(hiddenColumns, name) {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+valueString(row.GetFields()[name]))
	}
	return strings.Join(parts, " ")
}

func valueString(v *structpb.Value) string {
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_NumberValue:
		return fmt.Sprint(k.NumberValue)
	case *structpb.Value_BoolValue:
		return fmt.Sprint(k.BoolValue)
	default:
		return v.String()
	}
}
