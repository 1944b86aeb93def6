package database

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"teatrlead/entity"
	"teatrlead/internal/config"
	"teatrlead/lib/clock"
)

const (
	collectionLinkMappings = "link_mappings"
	collectionSettings     = "bot_settings"
)

// Operator-editable texts fall back to these when never set.
const (
	defaultFAQText = "Здесь скоро появятся ответы на частые вопросы. " +
		"А пока напишите нам, и мы поможем лично."
	defaultContactsText = "По всем вопросам: @theatrfest_support"
)

type MongoDB struct {
	ctx           context.Context
	clientOptions *options.ClientOptions
	database      string
}

func NewMongoClient(conf *config.Config) *MongoDB {
	if !conf.Mongo.Enabled {
		return nil
	}
	connectionUri := fmt.Sprintf("mongodb://%s:%s", conf.Mongo.Host, conf.Mongo.Port)
	clientOptions := options.Client().ApplyURI(connectionUri)
	if conf.Mongo.User != "" {
		clientOptions.SetAuth(options.Credential{
			Username:   conf.Mongo.User,
			Password:   conf.Mongo.Password,
			AuthSource: conf.Mongo.Database,
		})
	}
	client := &MongoDB{
		ctx:           context.Background(),
		clientOptions: clientOptions,
		database:      conf.Mongo.Database,
	}
	return client
}

func (m *MongoDB) connect() (*mongo.Client, error) {
	connection, err := mongo.Connect(m.ctx, m.clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	return connection, nil
}

func (m *MongoDB) disconnect(connection *mongo.Client) {
	_ = connection.Disconnect(m.ctx)
}

func (m *MongoDB) GetLinkMapping(slug string) (*entity.LinkMapping, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionLinkMappings)
	filter := bson.D{{Key: "slug", Value: slug}}
	var mapping entity.LinkMapping
	err = collection.FindOne(m.ctx, filter).Decode(&mapping)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongodb find: %w", err)
	}
	return &mapping, nil
}

func (m *MongoDB) AllLinkMappings() ([]*entity.LinkMapping, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionLinkMappings)
	opts := options.Find().SetSort(bson.D{{Key: "slug", Value: 1}})
	cursor, err := collection.Find(m.ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(m.ctx)

	var mappings []*entity.LinkMapping
	err = cursor.All(m.ctx, &mappings)
	if err != nil {
		return nil, err
	}
	return mappings, nil
}

// UpsertLinkMapping creates or replaces a mapping by slug. CreatedAt of an
// existing document survives the update.
func (m *MongoDB) UpsertLinkMapping(mapping *entity.LinkMapping) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	now := clock.Now()
	mapping.UpdatedAt = now

	collection := connection.Database(m.database).Collection(collectionLinkMappings)
	filter := bson.D{{Key: "slug", Value: mapping.Slug}}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "city", Value: mapping.City},
			{Key: "project", Value: mapping.Project},
			{Key: "show_datetime", Value: mapping.ShowDatetime},
			{Key: "ticket_url", Value: mapping.TicketURL},
			{Key: "seat_url", Value: mapping.SeatURL},
			{Key: "crm_type", Value: mapping.CRMType},
			{Key: "updated_at", Value: mapping.UpdatedAt},
		}},
		{Key: "$setOnInsert", Value: bson.D{{Key: "created_at", Value: now}}},
	}
	opts := options.Update().SetUpsert(true)
	_, err = collection.UpdateOne(m.ctx, filter, update, opts)
	return err
}

func (m *MongoDB) DeleteLinkMapping(slug string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionLinkMappings)
	_, err = collection.DeleteOne(m.ctx, bson.D{{Key: "slug", Value: slug}})
	return err
}

func (m *MongoDB) GetSetting(name string) (string, error) {
	connection, err := m.connect()
	if err != nil {
		return "", err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionSettings)
	filter := bson.D{{Key: "name", Value: name}}
	var doc struct {
		Name  string `bson:"name"`
		Value string `bson:"value"`
	}
	err = collection.FindOne(m.ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("mongodb find: %w", err)
	}
	return doc.Value, nil
}

func (m *MongoDB) SetSetting(name, value string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionSettings)
	filter := bson.D{{Key: "name", Value: name}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: name},
		{Key: "value", Value: value},
		{Key: "updated_at", Value: clock.Now()},
	}}}
	opts := options.Update().SetUpsert(true)
	_, err = collection.UpdateOne(m.ctx, filter, update, opts)
	return err
}

// Settings assembles the operator-editable configuration, filling in
// defaults for texts that were never customized.
func (m *MongoDB) Settings() (*entity.BotSettings, error) {
	promo, err := m.GetSetting(entity.SettingPromoCode)
	if err != nil {
		return nil, err
	}
	ticket, err := m.GetSetting(entity.SettingTicketURL)
	if err != nil {
		return nil, err
	}
	faq, err := m.GetSetting(entity.SettingFAQText)
	if err != nil {
		return nil, err
	}
	contacts, err := m.GetSetting(entity.SettingContactsText)
	if err != nil {
		return nil, err
	}
	if faq == "" {
		faq = defaultFAQText
	}
	if contacts == "" {
		contacts = defaultContactsText
	}
	return &entity.BotSettings{
		PromoCode:    promo,
		TicketURL:    ticket,
		FAQText:      faq,
		ContactsText: contacts,
	}, nil
}
