package main

import (
	"context"
	"encoding/csv"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kdd-community/website-backend/internal/models"
	"github.com/kdd-community/website-backend/pkg/mongodb"
)

// Imports legacy events from a CSV export into the Events collection.
// Expected header:
// id,date,duration,title,location,locationDetails,locationLink,image,description,joinLink,price,quantity
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		log.Fatal("MONGODB_URI environment variable is required")
	}
	dbName := os.Getenv("MONGODB_DATABASE")
	if dbName == "" {
		dbName = "kdd-website"
	}

	if len(os.Args) < 2 {
		log.Fatal("Usage: import_events <events.csv>")
	}
	csvPath := os.Args[1]

	file, err := os.Open(csvPath)
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	client, err := mongodb.NewClient(mongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	collection := client.Database(dbName).Collection("Events")

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		log.Fatalf("Failed to read CSV header: %v", err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[name] = i
	}
	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	imported := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Failed to read CSV record: %v", err)
		}

		date, err := parseDate(field(record, "date"))
		if err != nil {
			log.Printf("Skipping %q: %v", field(record, "id"), err)
			continue
		}
		duration, _ := strconv.Atoi(field(record, "duration"))
		quantity, _ := strconv.Atoi(field(record, "quantity"))

		event := models.Event{
			ID:              field(record, "id"),
			Date:            date,
			Duration:        duration,
			Title:           field(record, "title"),
			Location:        field(record, "location"),
			LocationDetails: field(record, "locationDetails"),
			LocationLink:    field(record, "locationLink"),
			Image:           field(record, "image"),
			Description:     field(record, "description"),
			JoinLink:        field(record, "joinLink"),
			Price:           field(record, "price"),
			Quantity:        quantity,
			Photos:          []models.Photo{},
		}
		if event.ID == "" || event.Title == "" {
			log.Printf("Skipping record with missing id or title")
			continue
		}

		_, err = collection.ReplaceOne(context.Background(), bson.M{"_id": event.ID}, event, options.Replace().SetUpsert(true))
		if err != nil {
			log.Fatalf("Failed to upsert event %q: %v", event.ID, err)
		}
		imported++
	}

	log.Printf("Imported %d events into %s.Events", imported, dbName)
}

func parseDate(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02"} {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
