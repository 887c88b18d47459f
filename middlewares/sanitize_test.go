package middlewares

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func echoBody(c *gin.Context) {
	b, _ := io.ReadAll(c.Request.Body)
	c.Data(http.StatusOK, "text/plain", b)
}

func sanitizeEngine() *gin.Engine {
	r := newEngine(false)
	r.Use(BodyLimit(MaxJSONBody), Sanitize())
	r.POST("/echo", echoBody)
	return r
}

func TestSanitizeDropsOperatorKeysAndHTML(t *testing.T) {
	body := `{
		"name": "<script>alert(1)</script>Bob",
		"$gt": "",
		"a.b": 1,
		"price": 397.5,
		"password": "<secret>",
		"nested": {"$where": "1", "ok": "<b>bold</b>"},
		"tags": ["<i>t</i>", "plain"]
	}`
	w := do(sanitizeEngine(), http.MethodPost, "/echo", jsonBody(body), "Content-Type", "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}

	if got["name"] != "Bob" {
		t.Errorf("name = %q", got["name"])
	}
	if _, ok := got["$gt"]; ok {
		t.Error("$gt kept")
	}
	if _, ok := got["a.b"]; ok {
		t.Error("dotted key kept")
	}
	if got["price"] != 397.5 {
		t.Errorf("price = %v", got["price"])
	}
	if got["password"] != "<secret>" {
		t.Errorf("password changed to %q", got["password"])
	}
	nested := got["nested"].(map[string]any)
	if _, ok := nested["$where"]; ok || nested["ok"] != "bold" {
		t.Errorf("nested = %v", nested)
	}
	tags := got["tags"].([]any)
	if tags[0] != "t" || tags[1] != "plain" {
		t.Errorf("tags = %v", tags)
	}
}

func TestSanitizeLeavesOtherBodiesAlone(t *testing.T) {
	r := sanitizeEngine()

	w := do(r, http.MethodPost, "/echo", jsonBody(`{"name": `), "Content-Type", "application/json")
	if w.Body.String() != `{"name": ` {
		t.Errorf("invalid JSON rewritten to %q", w.Body.String())
	}

	w = do(r, http.MethodPost, "/echo", jsonBody("name=<b>x</b>"), "Content-Type", "application/x-www-form-urlencoded")
	if w.Body.String() != "name=<b>x</b>" {
		t.Errorf("form body rewritten to %q", w.Body.String())
	}
}

func TestBodyLimit(t *testing.T) {
	r := sanitizeEngine()
	big := `{"review":"` + strings.Repeat("a", MaxJSONBody) + `"}`

	w := do(r, http.MethodPost, "/echo", jsonBody(big), "Content-Type", "application/json")
	wantMessage(t, w, http.StatusRequestEntityTooLarge, "Request body too large")

	// no Content-Length: the limit is enforced while reading
	req := httptest.NewRequest(http.MethodPost, "/echo", io.NopCloser(bytes.NewReader([]byte(big))))
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = -1
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	wantMessage(t, w, http.StatusRequestEntityTooLarge, "Request body too large")

	// uploads are not JSON and are not capped here
	w = do(r, http.MethodPost, "/echo", jsonBody(big), "Content-Type", "text/plain")
	if w.Code != http.StatusOK {
		t.Errorf("plain body status = %d", w.Code)
	}
}
