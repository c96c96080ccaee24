package web

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/KiloProjects/blogfront/internal/sanitize"
)

func returnData(w http.ResponseWriter, retData any) {
	statusData(w, "success", retData, 200)
}

func errorData(w http.ResponseWriter, retData any, errCode int) {
	statusData(w, "error", retData, errCode)
}

func statusData(w http.ResponseWriter, status string, retData any, statusCode int) {
	if err, ok := retData.(error); ok {
		retData = err.Error()
	}
	w.Header().Add("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(struct {
		Status string `json:"status"`
		Data   any    `json:"data"`
	}{
		Status: status,
		Data:   retData,
	})
	if err != nil {
		slog.WarnContext(context.Background(), "Could not send returnData", slog.Any("err", err))
	}
}

type previewResult struct {
	HTML    string `json:"html"`
	Excerpt string `json:"excerpt"`
}

// preview shows the editor how content will look once published
func (rt *Web) preview(w http.ResponseWriter, r *http.Request) {
	var args struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&args); err != nil {
		errorData(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	returnData(w, previewResult{
		HTML:    string(sanitize.Render(args.Content)),
		Excerpt: sanitize.Excerpt(args.Content),
	})
}
