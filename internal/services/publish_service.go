package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aetherbuildapp/aetherbuild/internal/models"
)

// PublishedSite is the renderable snapshot stored for the public site
// endpoint. It carries only the published sections; draft state never leaves
// the builder.
type PublishedSite struct {
	ProjectID   string           `bson:"_id" json:"project_id"`
	UserID      string           `bson:"user_id" json:"user_id"`
	Name        string           `bson:"name" json:"name"`
	Languages   []string         `bson:"languages" json:"languages"`
	Sections    []models.Section `bson:"sections" json:"sections"`
	Theme       models.Theme     `bson:"theme" json:"theme"`
	PublishedAt time.Time        `bson:"published_at" json:"published_at"`
}

// PublishService stores published snapshots in MongoDB, separate from the
// draft store so the public renderer never touches the editing database.
type PublishService struct {
	collection *mongo.Collection
}

func NewPublishService(client *mongo.Client) *PublishService {
	return &PublishService{
		collection: client.Database("aetherbuild").Collection("published_sites"),
	}
}

// PublishSite upserts the snapshot for the project. Republish overwrites;
// history lives in the builder, not here.
func (s *PublishService) PublishSite(ctx context.Context, userID string, project models.Project) (*PublishedSite, error) {
	langs := map[string]bool{}
	var ordered []string
	for _, section := range project.PublishedSections {
		for _, lang := range section.Content.Languages() {
			if !langs[lang] {
				langs[lang] = true
				ordered = append(ordered, lang)
			}
		}
	}

	site := PublishedSite{
		ProjectID:   project.ID,
		UserID:      userID,
		Name:        project.Name,
		Languages:   ordered,
		Sections:    models.CloneSections(project.PublishedSections),
		Theme:       project.Theme,
		PublishedAt: time.Now(),
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection.ReplaceOne(ctx, bson.M{"_id": site.ProjectID}, site, opts); err != nil {
		return nil, fmt.Errorf("failed to publish site %s: %w", project.ID, err)
	}
	return &site, nil
}

// GetPublishedSite loads the snapshot for the public renderer. A missing
// project returns nil, not an error.
func (s *PublishService) GetPublishedSite(ctx context.Context, projectID string) (*PublishedSite, error) {
	var site PublishedSite
	err := s.collection.FindOne(ctx, bson.M{"_id": projectID}).Decode(&site)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load published site %s: %w", projectID, err)
	}
	return &site, nil
}

// UnpublishSite removes the snapshot.
func (s *PublishService) UnpublishSite(ctx context.Context, userID, projectID string) error {
	_, err := s.collection.DeleteOne(ctx, bson.M{"_id": projectID, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to unpublish site %s: %w", projectID, err)
	}
	return nil
}
