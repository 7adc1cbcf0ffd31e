package main

import (
	"context"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kiezvet/vetdirectory/internal/domain/entities"
	mongoclient "github.com/kiezvet/vetdirectory/internal/infrastructure/clients/mongo"
	"github.com/kiezvet/vetdirectory/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	client := mongoclient.NewClient(&cfg.Mongo)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	defer client.Close(context.Background())

	coll, err := client.Collection(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, dropping collection before seeding")
		if err := coll.Drop(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to drop collection")
		}
	}

	// The proximity filter needs a 2dsphere index; the unique index on
	// googleMapsId makes re-running the seed idempotent.
	_, err = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "googleMapsId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "googleScore", Value: -1}}},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create indexes")
	}

	weekdayHours := func(hours string) []entities.OpeningHoursEntry {
		return []entities.OpeningHoursEntry{
			{Day: "Monday", Hours: hours},
			{Day: "Tuesday", Hours: hours},
			{Day: "Wednesday", Hours: hours},
			{Day: "Thursday", Hours: hours},
			{Day: "Friday", Hours: hours},
			{Day: "Saturday", Hours: "Closed"},
			{Day: "Sunday", Hours: "Closed"},
		}
	}

	listings := []entities.Listing{
		{
			GoogleMapsID: "seed-tierarzt-mitte",
			Title:        "Tierarztpraxis Mitte",
			CategoryName: "Veterinarian",
			Address:      "Torstraße 120, 10119 Berlin",
			Neighborhood: "Mitte",
			Rating:       4.7,
			OpeningHours: weekdayHours("9 AM to 6 PM"),
			Location: &entities.GeoPoint{
				Type:        "Point",
				Coordinates: [2]float64{13.4009, 52.5291},
			},
		},
		{
			GoogleMapsID: "seed-kleintierklinik-kreuzberg",
			Title:        "Kleintierklinik Kreuzberg",
			CategoryName: "Animal hospital",
			Address:      "Gneisenaustraße 44, 10961 Berlin",
			Neighborhood: "Kreuzberg",
			Rating:       4.4,
			OpeningHours: weekdayHours("8 AM to 8 PM"),
			Location: &entities.GeoPoint{
				Type:        "Point",
				Coordinates: [2]float64{13.3941, 52.4922},
			},
		},
		{
			GoogleMapsID: "seed-notdienst-wedding",
			Title:        "Tiernotdienst Wedding",
			CategoryName: "Emergency veterinarian service",
			Address:      "Müllerstraße 12, 13353 Berlin",
			Neighborhood: "Wedding",
			Rating:       4.1,
			OpeningHours: []entities.OpeningHoursEntry{
				{Day: "Monday", Hours: "Open 24 hours"},
				{Day: "Tuesday", Hours: "Open 24 hours"},
				{Day: "Wednesday", Hours: "Open 24 hours"},
				{Day: "Thursday", Hours: "Open 24 hours"},
				{Day: "Friday", Hours: "Open 24 hours"},
				{Day: "Saturday", Hours: "Open 24 hours"},
				{Day: "Sunday", Hours: "Open 24 hours"},
			},
			Location: &entities.GeoPoint{
				Type:        "Point",
				Coordinates: [2]float64{13.3608, 52.5429},
			},
		},
		{
			GoogleMapsID: "seed-nachtklinik-neukoelln",
			Title:        "Nachtklinik für Tiere Neukölln",
			CategoryName: "Animal hospital",
			Address:      "Karl-Marx-Straße 201, 12055 Berlin",
			Neighborhood: "Neukölln",
			Rating:       3.9,
			OpeningHours: []entities.OpeningHoursEntry{
				{Day: "Monday", Hours: "8 PM to 6 AM"},
				{Day: "Tuesday", Hours: "8 PM to 6 AM"},
				{Day: "Wednesday", Hours: "8 PM to 6 AM"},
				{Day: "Thursday", Hours: "8 PM to 6 AM"},
				{Day: "Friday", Hours: "8 PM to 6 AM"},
				{Day: "Saturday", Hours: "8 PM to 6 AM"},
				{Day: "Sunday", Hours: "8 PM to 6 AM"},
			},
			Location: &entities.GeoPoint{
				Type:        "Point",
				Coordinates: [2]float64{13.4432, 52.4736},
			},
		},
		{
			GoogleMapsID: "seed-katzenpraxis-prenzlauer",
			Title:        "Katzenpraxis Prenzlauer Berg",
			CategoryName: "Veterinarian",
			Address:      "Stargarder Straße 3, 10437 Berlin",
			Neighborhood: "Prenzlauer Berg",
			Rating:       4.9,
			OpeningHours: weekdayHours("10 AM to 4 PM"),
			Location: &entities.GeoPoint{
				Type:        "Point",
				Coordinates: [2]float64{13.4216, 52.5444},
			},
		},
	}

	seeded := 0
	for _, l := range listings {
		filter := bson.M{"googleMapsId": l.GoogleMapsID}
		update := bson.M{"$set": l}
		if _, err := coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
			log.Error().Err(err).Str("listing", l.Title).Msg("Failed to seed listing")
			continue
		}
		seeded++
	}

	log.Info().Int("count", seeded).Msg("Seeding completed")
}
