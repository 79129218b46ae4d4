package httputil_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/matzehuels/stammbaum/pkg/httputil"
)

func ExampleClient() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"family": {"name": "Beck"}}`)
	}))
	defer srv.Close()

	// A nil cache and keyer disable caching; every call hits the network.
	client := httputil.NewClient(nil, nil)

	var doc struct {
		Family struct {
			Name string `json:"name"`
		} `json:"family"`
	}
	if err := client.GetJSON(context.Background(), srv.URL, &doc); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Family:", doc.Family.Name)
	// Output:
	// Family: Beck
}
