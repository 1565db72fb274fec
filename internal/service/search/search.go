package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/okravets/contactsbook/internal/models"
)

// IndexContact writes the contact document, keyed by contact id.
func IndexContact(ctx context.Context, es *elasticsearch.Client, index string, contact *models.Contact) error {
	data, err := json.Marshal(contact)
	if err != nil {
		return err
	}

	res, err := es.Index(
		index,
		bytes.NewReader(data),
		es.Index.WithDocumentID(strconv.FormatUint(uint64(contact.ID), 10)),
		es.Index.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index contact: %s", res.Status())
	}
	return nil
}

// RemoveContact deletes the contact document if it exists.
func RemoveContact(ctx context.Context, es *elasticsearch.Client, index string, contactID uint) error {
	res, err := es.Delete(
		index,
		strconv.FormatUint(uint64(contactID), 10),
		es.Delete.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("remove contact: %s", res.Status())
	}
	return nil
}

// Search runs a fuzzy multi-field query over the owner's contacts.
func Search(ctx context.Context, es *elasticsearch.Client, index string, userID uint, query string, from, size int) (int64, []models.Contact, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":     query,
						"fields":    []string{"first_name^2", "last_name^2", "email", "phone_number"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]interface{}{
					"term": map[string]interface{}{"user_id": userID},
				},
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, err
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return 0, nil, fmt.Errorf("search: %s: %s", res.Status(), msg)
	}

	var r struct {
		Hits struct {
			Total struct{ Value int64 } `json:"total"`
			Hits  []struct {
				Source models.Contact `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	contacts := make([]models.Contact, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		contacts[i] = hit.Source
	}
	return r.Hits.Total.Value, contacts, nil
}
