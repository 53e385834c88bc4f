// Package internal hosts the debug inspect surface: a minimal HTML view over
// the raw BadgerDB keyspace plus live engine counters. It is meant for local
// debugging, never for production exposure.
package internal

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

type InspectRow struct {
	Key       string
	Type      string
	Timestamp string
	Channel   string
	Sender    string
	Detail    string
}

type RowMapper func(key string, val []byte) InspectRow
type StatsProvider func() map[string]any

type PageData struct {
	Prefix string
	Items  []InspectRow
	Stats  map[string]any
}

const inspectPage = `<!DOCTYPE html>
<html>
<head>
<title>Relay Inspect</title>
<style>
body { font-family: monospace; margin: 1.5rem; background: #111; color: #ddd; }
h1 { font-size: 1.2rem; }
table { border-collapse: collapse; width: 100%; }
th, td { text-align: left; padding: 4px 10px; border-bottom: 1px solid #333; }
th { color: #6c6; }
.stats span { margin-right: 1.5rem; color: #9cf; }
form { margin: 1rem 0; }
</style>
</head>
<body>
<h1>Relay Inspect</h1>
<div class="stats">{{range $k, $v := .Stats}}<span>{{$k}}: {{$v}}</span>{{end}}</div>
<form method="get"><input name="prefix" value="{{.Prefix}}"><button>Scan</button></form>
<table>
<tr><th>Key</th><th>Type</th><th>Time</th><th>Channel</th><th>Sender</th><th>Detail</th></tr>
{{range .Items}}
<tr><td>{{.Key}}</td><td>{{.Type}}</td><td>{{.Timestamp}}</td><td>{{.Channel}}</td><td>{{.Sender}}</td><td>{{.Detail}}</td></tr>
{{end}}
</table>
</body>
</html>`

// StartDebugServer serves an HTML dump of the keyspace on its own listener.
// The endpoint takes an optional ?prefix= to scope the scan.
func StartDebugServer(db *badger.DB, port int, endpoint string, mapper RowMapper, statsProvider StatsProvider) {
	mux := http.NewServeMux()
	tmpl := template.Must(template.New("inspect").Parse(inspectPage))

	if mapper == nil {
		mapper = MessageMapper
	}

	mux.HandleFunc(endpoint, func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "msg:"
		}

		data := PageData{
			Prefix: prefix,
			Stats:  make(map[string]any),
		}

		if statsProvider != nil {
			data.Stats = statsProvider()
		}

		_ = db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				_ = item.Value(func(val []byte) error {
					data.Items = append(data.Items, mapper(string(item.Key()), val))
					return nil
				})
			}
			return nil
		})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	go func() {
		_ = http.ListenAndServe(fmt.Sprintf("localhost:%d", port), mux)
	}()
}

// MessageMapper decodes "msg:" rows; everything else falls back to a raw row.
func MessageMapper(key string, val []byte) InspectRow {
	row := rawRow(key, val)

	var m struct {
		Channel  string    `json:"channel"`
		SenderID string    `json:"sender_id"`
		Content  string    `json:"content"`
		At       time.Time `json:"at"`
	}
	if err := json.Unmarshal(val, &m); err != nil || m.Channel == "" {
		return row
	}

	row.Type = "MESSAGE"
	row.Timestamp = m.At.Local().Format("15:04:05")
	row.Channel = m.Channel
	row.Sender = m.SenderID
	row.Detail = m.Content
	return row
}

func rawRow(key string, val []byte) InspectRow {
	row := InspectRow{
		Key:       key,
		Type:      "RAW",
		Timestamp: "--:--:--",
		Channel:   "-",
		Sender:    "-",
		Detail:    "Size: " + strconv.Itoa(len(val)) + " bytes",
	}

	// msg:{channel}:{padded-nanos}:{uuid}
	parts := strings.Split(key, ":")
	if len(parts) >= 4 {
		row.Channel = parts[1]
		if tsNano, err := strconv.ParseInt(parts[2], 10, 64); err == nil {
			row.Timestamp = time.Unix(0, tsNano).Format("15:04:05")
		}
	}
	return row
}
