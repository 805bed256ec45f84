package snapshot

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestOptionsDefaults(t *testing.T) {
	o := Options{URL: "http://x", ChromeBin: "/bin/true"}.withDefaults()
	if o.Width != DefaultWidth || o.Height != DefaultHeight {
		t.Errorf("size = %dx%d", o.Width, o.Height)
	}
	if o.Wait != DefaultWait || o.Timeout != DefaultTimeout {
		t.Errorf("wait/timeout = %v/%v", o.Wait, o.Timeout)
	}
	if o.ChromeBin != "/bin/true" {
		t.Errorf("explicit binary replaced: %q", o.ChromeBin)
	}

	o = Options{Wait: -1, Width: 300, ChromeBin: "x"}.withDefaults()
	if o.Wait != 0 || o.Width != 300 {
		t.Errorf("negative wait should disable settling: %+v", o)
	}
}

func TestCaptureErrors(t *testing.T) {
	if _, err := Capture(context.Background(), Options{}); err == nil {
		t.Error("empty URL should fail")
	}

	t.Setenv("CHROME_BIN", "")
	t.Setenv("PATH", "")
	if FindChrome() != "" {
		t.Skip("chrome installed at a well-known path")
	}
	_, err := Capture(context.Background(), Options{URL: "http://127.0.0.1"})
	if !errors.Is(err, ErrNoBrowser) {
		t.Errorf("got %v, want ErrNoBrowser", err)
	}
}

func TestFindChromeHonoursEnv(t *testing.T) {
	t.Setenv("CHROME_BIN", "/opt/custom/chrome")
	if got := FindChrome(); got != "/opt/custom/chrome" {
		t.Errorf("FindChrome = %q", got)
	}
}

func TestCaptureRealBrowser(t *testing.T) {
	if testing.Short() {
		t.Skip("short mode")
	}
	if FindChrome() == "" {
		t.Skip("no chrome binary")
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><div id="pie_chart" style="width:50px;height:50px;background:red"></div></body></html>`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	png, err := Capture(ctx, Options{URL: srv.URL, Width: 200, Height: 200, Wait: -1})
	if err != nil {
		t.Skipf("chrome unusable here: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("capture is not a PNG")
	}
}
