package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"team-project/dashboard/logging"
)

// IdleTimeout is how long an untouched server-side session is kept.
const IdleTimeout = 24 * time.Hour

// MongoStore keeps session values in MongoDB; the cookie only carries the
// signed session id.
type MongoStore struct {
	Codecs     []securecookie.Codec
	Options    *sessions.Options
	collection *mongo.Collection
}

type sessionDocument struct {
	ID        string    `bson:"_id"`
	Data      string    `bson:"data"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func NewMongoStore(collection *mongo.Collection, opts *sessions.Options, keyPairs ...[]byte) *MongoStore {
	codecs := securecookie.CodecsFromPairs(keyPairs...)
	for _, c := range codecs {
		if sc, ok := c.(*securecookie.SecureCookie); ok {
			sc.MaxAge(int(IdleTimeout.Seconds()))
		}
	}
	return &MongoStore{
		Codecs:     codecs,
		Options:    opts,
		collection: collection,
	}
}

// EnsureIndexes lets MongoDB expire idle sessions.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "updatedAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(IdleTimeout.Seconds())),
	})
	if err != nil {
		return fmt.Errorf("failed to create session ttl index: %w", err)
	}
	return nil
}

func (s *MongoStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

func (s *MongoStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.Options
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}
	var id string
	if err := securecookie.DecodeMulti(name, c.Value, &id, s.Codecs...); err != nil {
		return session, err
	}

	var doc sessionDocument
	err = s.collection.FindOne(r.Context(), bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return session, nil
	}
	if err != nil {
		logging.Logger.Errorf("Event ID: SESSION_LOAD_FAILED, Description: %v", err)
		return session, err
	}
	if err := securecookie.DecodeMulti(name, doc.Data, &session.Values, s.Codecs...); err != nil {
		return session, err
	}
	session.ID = id
	session.IsNew = false
	return session, nil
}

func (s *MongoStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if _, err := s.collection.DeleteOne(r.Context(), bson.M{"_id": session.ID}); err != nil {
				return fmt.Errorf("failed to delete session: %w", err)
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	data, err := securecookie.EncodeMulti(session.Name(), session.Values, s.Codecs...)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	doc := sessionDocument{ID: session.ID, Data: data, UpdatedAt: time.Now().UTC()}
	_, err = s.collection.ReplaceOne(r.Context(), bson.M{"_id": session.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		logging.Logger.Errorf("Event ID: SESSION_SAVE_FAILED, Description: %v", err)
		return fmt.Errorf("failed to save session: %w", err)
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.Codecs...)
	if err != nil {
		return fmt.Errorf("failed to encode session id: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}
