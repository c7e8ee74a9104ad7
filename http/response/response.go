package response

import (
	"encoding/json"
	"log"
	"net/http"
)

// SendJSON encodes and sends a JSON response
func SendJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// SendError sends a flat {"error": ...} body, matching what the checkout
// pages expect.
func SendError(w http.ResponseWriter, statusCode int, errorMsg string) {
	SendJSON(w, statusCode, map[string]string{"error": errorMsg})
}
