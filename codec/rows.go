// Package codec converts domain values to and from rows.
// A row is a structpb.Struct keyed by column name; the same rows are stored
// in badger and carried over gRPC.
package codec

import (
	"fmt"
	"groupchat/domain"
	"groupchat/errors"
	"strconv"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Column names, shared with the realtime payloads.
const (
	ColID           = "id"
	ColName         = "name"
	ColCreatedBy    = "created_by"
	ColUserID       = "user_id"
	ColContent      = "content"
	ColCreatedAt    = "created_at"
	ColGroupID      = "group_id"
	ColUserEmail    = "user_email"
	ColEmail        = "email"
	ColPasswordHash = "password_hash"
	ColAccessToken  = "access_token"
	ColExpiresAt    = "expires_at"
	ColPassword     = "password"
	ColQuery        = "query"
	ColRows         = "rows"
)

type Row = structpb.Struct

// StoredGroup is a group row with its owner, as persisted.
type StoredGroup struct {
	Group     domain.Group
	CreatedBy string
	CreatedAt time.Time
}

// StoredUser is a user row as persisted.
type StoredUser struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

func Marshal(row *Row) ([]byte, error) {
	return proto.Marshal(row)
}

func Unmarshal(b []byte) (*Row, error) {
	var row Row
	if err := proto.Unmarshal(b, &row); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	return &row, nil
}

func NewRow(fields map[string]*structpb.Value) *Row {
	return &Row{Fields: fields}
}

func GroupToRow(g StoredGroup) *Row {
	return NewRow(map[string]*structpb.Value{
		ColID:        IDValue(int64(g.Group.ID)),
		ColName:      structpb.NewStringValue(g.Group.Name),
		ColCreatedBy: structpb.NewStringValue(g.CreatedBy),
		ColCreatedAt: timeValue(g.CreatedAt),
	})
}

func RowToGroup(row *Row) (StoredGroup, error) {
	id, err := Int(row, ColID)
	if err != nil {
		return StoredGroup{}, err
	}
	name, err := String(row, ColName)
	if err != nil {
		return StoredGroup{}, err
	}
	return StoredGroup{
		Group:     domain.Group{ID: domain.GroupID(id), Name: name},
		CreatedBy: OptionalString(row, ColCreatedBy),
		CreatedAt: OptionalTime(row, ColCreatedAt),
	}, nil
}

func MessageToRow(m domain.Message) *Row {
	fields := map[string]*structpb.Value{
		ColID:        IDValue(int64(m.ID)),
		ColUserID:    structpb.NewStringValue(m.UserID),
		ColContent:   structpb.NewStringValue(m.Content),
		ColCreatedAt: timeValue(m.CreatedAt),
		ColGroupID:   IDValue(int64(m.GroupID)),
	}
	if m.AuthorEmail != "" {
		fields[ColUserEmail] = structpb.NewStringValue(m.AuthorEmail)
	}
	return NewRow(fields)
}

func RowToMessage(row *Row) (domain.Message, error) {
	id, err := Int(row, ColID)
	if err != nil {
		return domain.Message{}, err
	}
	groupID, err := Int(row, ColGroupID)
	if err != nil {
		return domain.Message{}, err
	}
	userID, err := String(row, ColUserID)
	if err != nil {
		return domain.Message{}, err
	}
	content, err := String(row, ColContent)
	if err != nil {
		return domain.Message{}, err
	}
	createdAt, err := Time(row, ColCreatedAt)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:          domain.MessageID(id),
		UserID:      userID,
		Content:     content,
		CreatedAt:   createdAt,
		GroupID:     domain.GroupID(groupID),
		AuthorEmail: OptionalString(row, ColUserEmail),
	}, nil
}

func NewMessageToRow(m domain.NewMessage) *Row {
	return NewRow(map[string]*structpb.Value{
		ColContent: structpb.NewStringValue(m.Content),
		ColUserID:  structpb.NewStringValue(m.UserID),
		ColGroupID: IDValue(int64(m.GroupID)),
	})
}

func RowToNewMessage(row *Row) (domain.NewMessage, error) {
	groupID, err := Int(row, ColGroupID)
	if err != nil {
		return domain.NewMessage{}, err
	}
	return domain.NewMessage{
		Content: OptionalString(row, ColContent),
		UserID:  OptionalString(row, ColUserID),
		GroupID: domain.GroupID(groupID),
	}, nil
}

func NewGroupToRow(g domain.NewGroup) *Row {
	return NewRow(map[string]*structpb.Value{
		ColName:      structpb.NewStringValue(g.Name),
		ColCreatedBy: structpb.NewStringValue(g.CreatedBy),
	})
}

func RowToNewGroup(row *Row) domain.NewGroup {
	return domain.NewGroup{
		Name:      OptionalString(row, ColName),
		CreatedBy: OptionalString(row, ColCreatedBy),
	}
}

func UserToRow(u StoredUser) *Row {
	return NewRow(map[string]*structpb.Value{
		ColID:           structpb.NewStringValue(u.ID),
		ColEmail:        structpb.NewStringValue(u.Email),
		ColPasswordHash: structpb.NewStringValue(u.PasswordHash),
		ColCreatedAt:    timeValue(u.CreatedAt),
	})
}

func RowToUser(row *Row) (StoredUser, error) {
	id, err := String(row, ColID)
	if err != nil {
		return StoredUser{}, err
	}
	email, err := String(row, ColEmail)
	if err != nil {
		return StoredUser{}, err
	}
	return StoredUser{
		ID:           id,
		Email:        email,
		PasswordHash: OptionalString(row, ColPasswordHash),
		CreatedAt:    OptionalTime(row, ColCreatedAt),
	}, nil
}

func SessionToRow(s domain.Session) *Row {
	return NewRow(map[string]*structpb.Value{
		ColAccessToken: structpb.NewStringValue(s.AccessToken),
		ColExpiresAt:   timeValue(s.ExpiresAt),
		ColUserID:      structpb.NewStringValue(s.User.ID),
		ColEmail:       structpb.NewStringValue(s.User.Email),
	})
}

func RowToSession(row *Row) (domain.Session, error) {
	token, err := String(row, ColAccessToken)
	if err != nil {
		return domain.Session{}, err
	}
	expiresAt, err := Time(row, ColExpiresAt)
	if err != nil {
		return domain.Session{}, err
	}
	userID, err := String(row, ColUserID)
	if err != nil {
		return domain.Session{}, err
	}
	return domain.Session{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        domain.User{ID: userID, Email: OptionalString(row, ColEmail)},
	}, nil
}

// Rows wraps a result set into a single row holding a list of rows.
func Rows(rows []*Row) *Row {
	values := make([]*structpb.Value, 0, len(rows))
	for _, r := range rows {
		values = append(values, structpb.NewStructValue(r))
	}
	return NewRow(map[string]*structpb.Value{
		ColRows: structpb.NewListValue(&structpb.ListValue{Values: values}),
	})
}

func UnwrapRows(row *Row) []*Row {
	list := row.GetFields()[ColRows].GetListValue()
	rows := make([]*Row, 0, len(list.GetValues()))
	for _, v := range list.GetValues() {
		if s := v.GetStructValue(); s != nil {
			rows = append(rows, s)
		}
	}
	return rows
}

func String(row *Row, col string) (string, error) {
	v, ok := row.GetFields()[col]
	if !ok {
		return "", fmt.Errorf("%w: missing column %q", errors.ErrInvalidPayload, col)
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%w: column %q is not a string", errors.ErrInvalidPayload, col)
	}
	return s.StringValue, nil
}

func OptionalString(row *Row, col string) string {
	return row.GetFields()[col].GetStringValue()
}

func Int(row *Row, col string) (int64, error) {
	v, ok := row.GetFields()[col]
	if !ok {
		return 0, fmt.Errorf("%w: missing column %q", errors.ErrInvalidPayload, col)
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		n, err := strconv.ParseInt(k.StringValue, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: column %q is not an integer", errors.ErrInvalidPayload, col)
		}
		return n, nil
	case *structpb.Value_NumberValue:
		return int64(k.NumberValue), nil
	default:
		return 0, fmt.Errorf("%w: column %q is not an integer", errors.ErrInvalidPayload, col)
	}
}

// IDValue encodes an id as a decimal string. A NumberValue is a float64 and
// would lose ids above 2^53.
func IDValue(id int64) *structpb.Value {
	return structpb.NewStringValue(strconv.FormatInt(id, 10))
}

func Time(row *Row, col string) (time.Time, error) {
	s, err := String(row, col)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: column %q: %v", errors.ErrInvalidPayload, col, err)
	}
	return t.UTC(), nil
}

func OptionalTime(row *Row, col string) time.Time {
	t, _ := Time(row, col)
	return t
}

func timeValue(t time.Time) *structpb.Value {
	return structpb.NewStringValue(t.UTC().Format(time.RFC3339Nano))
}
