// Command crm-import loads contacts from a JSON export into the CRM
// database. The input file holds either a bare array of contacts or an
// object with a top-level "contacts" array.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/sereniteo/crm/internal/database"
	"github.com/sereniteo/crm/internal/model"
	"github.com/sereniteo/crm/internal/store"
)

const batchSize = 500

func main() {
	var (
		file   = flag.String("file", "", "path to the JSON export to import")
		dbPath = flag.String("db", "crm.db", "path to the SQLite database")
		reset  = flag.Bool("reset", false, "delete existing contacts before importing")
	)
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	contacts, err := readContacts(*file)
	if err != nil {
		log.Fatalf("read %s: %v", *file, err)
	}
	if len(contacts) == 0 {
		log.Fatalf("no contacts found in %s", *file)
	}

	db, err := database.Open(*dbPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	contactStore := store.NewContactStore(db)

	if *reset {
		deleted, err := contactStore.DeleteAll()
		if err != nil {
			log.Fatalf("reset contacts: %v", err)
		}
		log.Printf("deleted %d existing contacts", deleted)
	}

	for start := 0; start < len(contacts); start += batchSize {
		end := start + batchSize
		if end > len(contacts) {
			end = len(contacts)
		}
		if err := contactStore.InsertBatch(contacts[start:end]); err != nil {
			log.Fatalf("insert batch %d-%d: %v", start, end, err)
		}
		log.Printf("imported %d/%d contacts", end, len(contacts))
	}

	total, err := contactStore.Count()
	if err != nil {
		log.Fatalf("count contacts: %v", err)
	}
	log.Printf("done, database now holds %d contacts", total)
}

func readContacts(path string) ([]model.Contact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var wrapped struct {
		Contacts []model.Contact `json:"contacts"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && len(wrapped.Contacts) > 0 {
		return wrapped.Contacts, nil
	}

	var list []model.Contact
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("unrecognized contact export format: %w", err)
	}
	return list, nil
}
