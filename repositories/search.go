//go:generate go run go.uber.org/mock/mockgen -source=search.go -destination=../mocks/mock_message_index.go -package=mocks
package repositories

import (
	"context"
	"groupchat/domain"
	"log/slog"
	"strconv"

	"github.com/abadojack/whatlanggo"
	"github.com/blugelabs/bluge"
	"github.com/blugelabs/bluge/analysis/lang/en"
)

const (
	fieldGroup     = "group_id"
	fieldContent   = "content"
	fieldContentEn = "content_en"
	fieldID        = "_id"
)

type IMessageIndex interface {
	Index(message domain.Message) error
	Search(ctx context.Context, groupID domain.GroupID, text string, limit int) ([]domain.MessageID, error)
}

// MessageIndex is the full-text index of message contents.
// Contents detected as English are also indexed with the English analyzer
// so that stemmed forms match ("sending" finds "send").
type MessageIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewMessageIndex(writer *bluge.Writer, log *slog.Logger) *MessageIndex {
	return &MessageIndex{writer: writer, log: log}
}

func (m *MessageIndex) Index(message domain.Message) error {
	doc := bluge.NewDocument(strconv.FormatInt(int64(message.ID), 10)).
		AddField(bluge.NewKeywordField(fieldGroup, groupTerm(message.GroupID))).
		AddField(bluge.NewTextField(fieldContent, message.Content))

	info := whatlanggo.Detect(message.Content)
	if info.Lang == whatlanggo.Eng && info.IsReliable() {
		doc.AddField(bluge.NewTextField(fieldContentEn, message.Content).
			WithAnalyzer(en.NewAnalyzer()))
	}
	return m.writer.Update(doc.ID(), doc)
}

// Search returns the ids of matching messages of one group, best match first.
func (m *MessageIndex) Search(ctx context.Context, groupID domain.GroupID, text string, limit int) ([]domain.MessageID, error) {
	reader, err := m.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	content := bluge.NewBooleanQuery().
		AddShould(bluge.NewMatchQuery(text).SetField(fieldContent)).
		AddShould(bluge.NewMatchQuery(text).SetField(fieldContentEn).SetAnalyzer(en.NewAnalyzer())).
		SetMinShould(1)
	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewTermQuery(groupTerm(groupID)).SetField(fieldGroup)).
		AddMust(content)

	matches, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, err
	}

	var ids []domain.MessageID
	match, err := matches.Next()
	for err == nil && match != nil {
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			if field != fieldID {
				return true
			}
			id, parseErr := strconv.ParseInt(string(value), 10, 64)
			if parseErr != nil {
				m.log.Warn("Unreadable document id in search index", "id", string(value))
				return false
			}
			ids = append(ids, domain.MessageID(id))
			return false
		})
		if visitErr != nil {
			return nil, visitErr
		}
		match, err = matches.Next()
	}
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func groupTerm(groupID domain.GroupID) string {
	return strconv.FormatInt(int64(groupID), 10)
}
