package folioapi

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BlogPost is a published article. ReadTime is derived from Content and
// recomputed whenever Content changes; it is never accepted from a client.
type BlogPost struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Excerpt     string             `bson:"excerpt" json:"excerpt"`
	Content     string             `bson:"content" json:"content"`
	Tags        []string           `bson:"tags" json:"tags"`
	PublishDate time.Time          `bson:"publishDate" json:"publishDate"`
	ImageURL    string             `bson:"imageUrl" json:"imageUrl"`
	ReadTime    string             `bson:"readTime" json:"readTime"`
	Likes       int                `bson:"likes" json:"likes"`
	Comments    int                `bson:"comments" json:"comments"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ProjectStats is the nested statistics record on a Project.
// All three fields are free-form display strings ("10K+", "99.9%", "4.9/5").
type ProjectStats struct {
	Users       string `bson:"users" json:"users"`
	Performance string `bson:"performance" json:"performance"`
	Rating      string `bson:"rating" json:"rating"`
}

// Project is a portfolio entry.
type Project struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Image       string             `bson:"image" json:"image"`
	Tags        []string           `bson:"tags" json:"tags"`
	DemoURL     string             `bson:"demoUrl" json:"demoUrl"`
	CodeURL     string             `bson:"codeUrl" json:"codeUrl"`
	Featured    bool               `bson:"featured" json:"featured"`
	Stats       ProjectStats       `bson:"stats" json:"stats"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Message is an inbound contact-form submission. The wire field for the
// body is "message", matching the contact form clients already send.
type Message struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name"`
	Email      string             `bson:"email" json:"email"`
	Subject    string             `bson:"subject" json:"subject"`
	Body       string             `bson:"message" json:"message"`
	ReceivedAt time.Time          `bson:"receivedAt" json:"receivedAt"`
}
