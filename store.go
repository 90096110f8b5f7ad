package folioapi

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = mongo.ErrNoDocuments

// documentValidationFailure is the MongoDB server code for a write that
// violates collection-level schema constraints.
const documentValidationFailure = 121

// Store wraps a MongoDB database and owns create/list/get/update/delete
// for each content kind. Concurrent updates to the same document race
// with last-write-wins semantics; no version token is kept.
type Store struct {
	client   *mongo.Client
	blogs    *mongo.Collection
	projects *mongo.Collection
	messages *mongo.Collection
}

// NewStore connects to the document store at uri and verifies the
// connection with a ping.
func NewStore(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	db := client.Database(database)
	return &Store{
		client:   client,
		blogs:    db.Collection("blogs"),
		projects: db.Collection("projects"),
		messages: db.Collection("messages"),
	}, nil
}

// Close disconnects from the document store.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// ParseID converts a path parameter into an ObjectID. A malformed id is
// the caller's error and must be distinguishable from a well-formed id
// that matches nothing.
func ParseID(s string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(s)
	return id, err == nil
}

// classifyWriteError surfaces document-validation failures as store-level
// constraint violations with per-field messages; anything else passes
// through untouched.
func classifyWriteError(err error) error {
	var we mongo.WriteException
	if errors.As(err, &we) {
		var details []string
		for _, e := range we.WriteErrors {
			if e.Code == documentValidationFailure {
				details = append(details, e.Message)
			}
		}
		if len(details) > 0 {
			return storeError(details)
		}
	}
	return err
}

// --- Blog posts ---

// CreateBlog inserts a post and assigns system timestamps.
func (s *Store) CreateBlog(ctx context.Context, p BlogPost) (BlogPost, error) {
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	res, err := s.blogs.InsertOne(ctx, p)
	if err != nil {
		return BlogPost{}, classifyWriteError(err)
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	return p, nil
}

// ListBlogs returns all posts ordered by publish date descending.
func (s *Store) ListBlogs(ctx context.Context) ([]BlogPost, error) {
	cur, err := s.blogs.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "publishDate", Value: -1}}))
	if err != nil {
		return nil, err
	}
	posts := []BlogPost{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetBlog returns a single post by id, or ErrNotFound.
func (s *Store) GetBlog(ctx context.Context, id primitive.ObjectID) (BlogPost, error) {
	var p BlogPost
	err := s.blogs.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	return p, err
}

// UpdateBlog merges the given fields into a post and returns the updated
// document. updatedAt is always refreshed.
func (s *Store) UpdateBlog(ctx context.Context, id primitive.ObjectID, set bson.M) (BlogPost, error) {
	set["updatedAt"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p BlogPost
	err := s.blogs.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return BlogPost{}, ErrNotFound
		}
		return BlogPost{}, classifyWriteError(err)
	}
	return p, nil
}

// DeleteBlog removes a post by id, or returns ErrNotFound.
func (s *Store) DeleteBlog(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.blogs.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Projects ---

// CreateProject inserts a project and assigns system timestamps.
func (s *Store) CreateProject(ctx context.Context, p Project) (Project, error) {
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	res, err := s.projects.InsertOne(ctx, p)
	if err != nil {
		return Project{}, classifyWriteError(err)
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	return p, nil
}

// ListProjects returns all projects, newest first.
func (s *Store) ListProjects(ctx context.Context) ([]Project, error) {
	cur, err := s.projects.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	projects := []Project{}
	if err := cur.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject returns a single project by id, or ErrNotFound.
func (s *Store) GetProject(ctx context.Context, id primitive.ObjectID) (Project, error) {
	var p Project
	err := s.projects.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	return p, err
}

// UpdateProject merges the given fields into a project and returns the
// updated document.
func (s *Store) UpdateProject(ctx context.Context, id primitive.ObjectID, set bson.M) (Project, error) {
	set["updatedAt"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p Project
	err := s.projects.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Project{}, ErrNotFound
		}
		return Project{}, classifyWriteError(err)
	}
	return p, nil
}

// DeleteProject removes a project by id, or returns ErrNotFound.
func (s *Store) DeleteProject(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.projects.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Messages ---

// CreateMessage inserts a contact message, stamping receivedAt.
func (s *Store) CreateMessage(ctx context.Context, m Message) (Message, error) {
	m.ReceivedAt = time.Now().UTC()
	res, err := s.messages.InsertOne(ctx, m)
	if err != nil {
		return Message{}, classifyWriteError(err)
	}
	m.ID = res.InsertedID.(primitive.ObjectID)
	return m, nil
}

// ListMessages returns all messages, most recently received first.
func (s *Store) ListMessages(ctx context.Context) ([]Message, error) {
	cur, err := s.messages.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "receivedAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	messages := []Message{}
	if err := cur.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// GetMessage returns a single message by id, or ErrNotFound.
func (s *Store) GetMessage(ctx context.Context, id primitive.ObjectID) (Message, error) {
	var m Message
	err := s.messages.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	return m, err
}

// UpdateMessage merges the given fields into a message and returns the
// updated document.
func (s *Store) UpdateMessage(ctx context.Context, id primitive.ObjectID, set bson.M) (Message, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var m Message
	err := s.messages.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Message{}, ErrNotFound
		}
		return Message{}, classifyWriteError(err)
	}
	return m, nil
}

// DeleteMessage removes a message by id, or returns ErrNotFound.
func (s *Store) DeleteMessage(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.messages.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
