package monitoring

import "testing"

func TestSetLoggerRedirectsLogf(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var captured string
	SetLogger(func(format string, v ...interface{}) {
		captured = format
	})
	Logf("controller: state -> %s", "Running")

	if captured == "" {
		t.Error("expected the custom logger to be invoked")
	}
}

func TestSetLoggerNilInstallsNoOp(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(string, ...interface{}) { called = true })
	SetLogger(nil)
	Logf("controller: tick error %v", "boom")

	if called {
		t.Error("expected SetLogger(nil) to silence the previous logger")
	}
}

func TestLogfDefaultIsNotNil(t *testing.T) {
	if Logf == nil {
		t.Fatal("Logf should not be nil by default")
	}
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Logf panicked: %v", r)
		}
	}()
	Logf("controller: state -> %s", "Connecting")
}
