// Package catalog provides access to the AudioSet segment catalog and label index
package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rishabh-bhattad/audioset-downloader-win/pkg/models"
)

const (
	// DefaultBaseURL is the base URL for the AudioSet catalog CSV files
	DefaultBaseURL = "http://storage.googleapis.com/us_audioset/youtube_corpus/v1/csv"

	// labelIndexFile maps display names to machine codes
	labelIndexFile = "class_labels_indices.csv"
)

// Client fetches and parses the AudioSet catalog CSVs
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new catalog client
func New() *Client {
	return &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// FetchLabelMapping downloads the class label index and builds the
// bidirectional display-name/machine-code mapping
func (c *Client) FetchLabelMapping(ctx context.Context) (*LabelMapping, error) {
	body, err := c.get(ctx, labelIndexFile)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	reader := csv.NewReader(body)
	reader.FieldsPerRecord = 3

	// Header row: index,mid,display_name
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read label index header: %w", err)
	}

	pairs := make(map[string]string)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse label index: %w", err)
		}
		pairs[record[2]] = record[1]
	}

	if len(pairs) == 0 {
		return nil, fmt.Errorf("label index %s contained no labels", labelIndexFile)
	}

	return NewLabelMapping(pairs), nil
}

// FetchSegments downloads the segment catalog for a dataset split and parses
// it into download tasks, preserving catalog order
func (c *Client) FetchSegments(ctx context.Context, split string) ([]models.DownloadTask, error) {
	body, err := c.get(ctx, split+"_segments.csv")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return parseSegments(body)
}

// parseSegments reads segment rows of the form
//
//	YTID, start_seconds, end_seconds, "label1,label2"
//
// skipping the leading '#' comment lines the catalog carries.
func parseSegments(r io.Reader) ([]models.DownloadTask, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = 4

	var tasks []models.DownloadTask
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse segment row: %w", err)
		}

		start, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid start_seconds %q for %s: %w", record[1], record[0], err)
		}
		end, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid end_seconds %q for %s: %w", record[2], record[0], err)
		}

		labels := strings.Split(record[3], ",")
		if len(labels) == 0 || labels[0] == "" {
			return nil, fmt.Errorf("segment %s has no labels", record[0])
		}

		tasks = append(tasks, models.DownloadTask{
			YTID:         record[0],
			StartSeconds: start,
			EndSeconds:   end,
			Labels:       labels,
		})
	}

	return tasks, nil
}

// get issues a GET for a catalog file and returns the response body
func (c *Client) get(ctx context.Context, file string) (io.ReadCloser, error) {
	endpoint := fmt.Sprintf("%s/%s", c.baseURL, file)

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", file, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("catalog request for %s failed with status %d", file, resp.StatusCode)
	}

	return resp.Body, nil
}
