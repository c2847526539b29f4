package hide

import (
	"context"
	"testing"
)

func fakeGate(t *testing.T, responses map[string]string) *Gate {
	t.Helper()
	g := &Gate{}
	g.run = func(ctx context.Context, args ...string) ([]byte, error) {
		key := args[0]
		resp, ok := responses[key]
		if !ok {
			t.Fatalf("unexpected subcommand %v", args)
		}
		return []byte(resp), nil
	}
	return g
}

func TestListParsesFriendlyNameGroups(t *testing.T) {
	g := fakeGate(t, map[string]string{
		"--dev-list": `{"Logitech Extreme 3D Pro":[{"friendlyName":"Logitech Extreme 3D Pro","path":"\\\\?\\hid#vid_046d","gamingDevice":true,"present":true}]}`,
	})
	devices, err := g.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(devices) != 1 || !devices[0].GamingDevice || !devices[0].Present {
		t.Fatalf("got %+v", devices)
	}
}

func TestCloakStateNow(t *testing.T) {
	g := fakeGate(t, map[string]string{"--cloak-state": `{"enabled":true}`})
	on, err := g.CloakStateNow(context.Background())
	if err != nil {
		t.Fatalf("CloakStateNow: %v", err)
	}
	if !on {
		t.Fatalf("got false, want true")
	}
}

func TestListRegisteredApps(t *testing.T) {
	g := fakeGate(t, map[string]string{"--app-list": `["C:\\Games\\sc.exe"]`})
	apps, err := g.ListRegisteredApps(context.Background())
	if err != nil {
		t.Fatalf("ListRegisteredApps: %v", err)
	}
	if len(apps) != 1 || apps[0] != `C:\Games\sc.exe` {
		t.Fatalf("got %v", apps)
	}
}

func TestHideInvokesDevHideWithPath(t *testing.T) {
	var gotArgs []string
	g := &Gate{}
	g.run = func(ctx context.Context, args ...string) ([]byte, error) {
		gotArgs = args
		return nil, nil
	}
	if err := g.Hide(context.Background(), `\\?\hid#vid_046d`); err != nil {
		t.Fatalf("Hide: %v", err)
	}
	if len(gotArgs) != 2 || gotArgs[0] != "--dev-hide" {
		t.Fatalf("got args %v", gotArgs)
	}
}
