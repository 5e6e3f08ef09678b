package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/sereniteo/crm/internal/model"
)

type ContactStore struct {
	db *sql.DB
}

func NewContactStore(db *sql.DB) *ContactStore {
	return &ContactStore{db: db}
}

func scanContact(scanner interface{ Scan(...any) error }) (*model.Contact, error) {
	var c model.Contact
	var email, telephone, mobile, adresse, statut sql.NullString
	var consultant, commentaires, dateCreation, scpi, marketing sql.NullString
	var montant sql.NullInt64

	err := scanner.Scan(
		&c.ID, &c.Nom, &email, &telephone, &mobile, &adresse, &statut,
		&consultant, &commentaires, &dateCreation, &scpi, &marketing,
		&montant, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	assign := func(dst **string, src sql.NullString) {
		if src.Valid {
			v := src.String
			*dst = &v
		}
	}
	assign(&c.Email, email)
	assign(&c.Telephone, telephone)
	assign(&c.Mobile, mobile)
	assign(&c.Adresse, adresse)
	assign(&c.Statut, statut)
	assign(&c.Consultant, consultant)
	assign(&c.Commentaires, commentaires)
	assign(&c.DateCreation, dateCreation)
	assign(&c.SCPI, scpi)
	assign(&c.Marketing, marketing)
	if montant.Valid {
		c.Montant = &montant.Int64
	}
	return &c, nil
}

const contactCols = `id, nom, email, telephone, mobile, adresse, statut, consultant, commentaires, date_creation, scpi, marketing, montant, created_at`

func contactArgs(c *model.Contact) []any {
	return []any{
		c.Nom, c.Email, c.Telephone, c.Mobile, c.Adresse, c.Statut,
		c.Consultant, c.Commentaires, c.DateCreation, c.SCPI, c.Marketing,
		c.Montant,
	}
}

const contactInsert = `INSERT INTO contacts (nom, email, telephone, mobile, adresse, statut, consultant, commentaires, date_creation, scpi, marketing, montant) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (s *ContactStore) Create(c *model.Contact) (*model.Contact, error) {
	result, err := s.db.Exec(contactInsert, contactArgs(c)...)
	if err != nil {
		return nil, fmt.Errorf("insert contact: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ContactStore) GetByID(id int64) (*model.Contact, error) {
	row := s.db.QueryRow(`SELECT `+contactCols+` FROM contacts WHERE id = ?`, id)
	c, err := scanContact(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return c, nil
}

// List returns every contact in storage order.
func (s *ContactStore) List() ([]model.Contact, error) {
	return s.queryContacts(`SELECT ` + contactCols + ` FROM contacts ORDER BY id`)
}

// Search returns contacts where any of nom, email, telephone, mobile,
// adresse, or commentaires contains the query, case-insensitively.
func (s *ContactStore) Search(query string) ([]model.Contact, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	fields := []string{"nom", "email", "telephone", "mobile", "adresse", "commentaires"}

	conds := make([]string, len(fields))
	args := make([]any, len(fields))
	for i, f := range fields {
		conds[i] = fmt.Sprintf("lower(coalesce(%s, '')) LIKE ?", f)
		args[i] = pattern
	}

	q := `SELECT ` + contactCols + ` FROM contacts WHERE ` + strings.Join(conds, " OR ") + ` ORDER BY id`
	return s.queryContacts(q, args...)
}

// Filter describes the conjunctive contact filters. Zero-value fields are
// ignored; Statut requires an exact match, Consultant and SCPI match as
// case-insensitive substrings, and Annee matches as a substring of the
// free-text date_creation field.
type Filter struct {
	Statut     string
	Consultant string
	SCPI       string
	Annee      string
}

func (f Filter) empty() bool {
	return f.Statut == "" && f.Consultant == "" && f.SCPI == "" && f.Annee == ""
}

func (s *ContactStore) FilterContacts(f Filter) ([]model.Contact, error) {
	if f.empty() {
		return s.List()
	}

	var conds []string
	var args []any

	if f.Statut != "" {
		conds = append(conds, "statut = ?")
		args = append(args, f.Statut)
	}
	if f.Consultant != "" {
		conds = append(conds, "lower(coalesce(consultant, '')) LIKE ?")
		args = append(args, "%"+strings.ToLower(f.Consultant)+"%")
	}
	if f.SCPI != "" {
		conds = append(conds, "lower(coalesce(scpi, '')) LIKE ?")
		args = append(args, "%"+strings.ToLower(f.SCPI)+"%")
	}
	if f.Annee != "" {
		conds = append(conds, "coalesce(date_creation, '') LIKE ?")
		args = append(args, "%"+f.Annee+"%")
	}

	q := `SELECT ` + contactCols + ` FROM contacts WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY id`
	return s.queryContacts(q, args...)
}

func (s *ContactStore) Count() (int64, error) {
	var n int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM contacts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count contacts: %w", err)
	}
	return n, nil
}

// InsertBatch inserts the given contacts inside a single transaction. The
// import utility calls it in fixed-size batches to bound transaction size.
func (s *ContactStore) InsertBatch(contacts []model.Contact) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(contactInsert)
	if err != nil {
		return fmt.Errorf("prepare batch insert: %w", err)
	}
	defer stmt.Close()

	for i := range contacts {
		if _, err := stmt.Exec(contactArgs(&contacts[i])...); err != nil {
			return fmt.Errorf("batch insert contact %q: %w", contacts[i].Nom, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// DeleteAll clears the contacts table and returns the number of rows removed.
func (s *ContactStore) DeleteAll() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM contacts`)
	if err != nil {
		return 0, fmt.Errorf("delete contacts: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}

func (s *ContactStore) queryContacts(q string, args ...any) ([]model.Contact, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, *c)
	}
	return contacts, rows.Err()
}
