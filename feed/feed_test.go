package feed

import (
	"testing"

	"github.com/zeroinstall-go/zeroinstall/model"
)

const sampleFeed = `<?xml version="1.0" ?>
<interface uri="http://example.com/hello.xml">
  <group arch="Linux-*" stability="testing">
    <requires interface="http://example.com/libfoo.xml" version="1.0" before="2.0"/>
    <group stability="stable">
      <implementation id="sha256new=aaa" version="1.0" main="bin/hello">
        <manifest-digest sha256new="aaa"/>
        <archive href="http://example.com/hello-1.0.tar.gz" size="100"/>
      </implementation>
    </group>
    <implementation id="sha256new=bbb" version="2.0">
      <manifest-digest sha256new="bbb"/>
      <command name="run" path="bin/hello2"/>
    </implementation>
  </group>
</interface>`

func TestParseAndSimplify(t *testing.T) {
	f, err := Parse("http://example.com/hello.xml", []byte(sampleFeed))
	if err != nil {
		t.Fatal(err)
	}
	if f.Interface != "http://example.com/hello.xml" {
		t.Errorf("unexpected interface id %q", f.Interface)
	}

	impls := f.Simplify()
	if len(impls) != 2 {
		t.Fatalf("expected 2 implementations, got %d", len(impls))
	}

	byID := make(map[string]model.Implementation)
	for _, impl := range impls {
		byID[impl.ID] = impl
	}

	stable := byID["sha256new=aaa"]
	if stable.Stability != model.Stable {
		t.Errorf("expected inner group to override stability to stable, got %v", stable.Stability)
	}
	if stable.Architecture.OS != model.Linux {
		t.Errorf("expected inherited arch Linux, got %v", stable.Architecture.OS)
	}
	if len(stable.Dependencies) != 1 || stable.Dependencies[0].InterfaceID != "http://example.com/libfoo.xml" {
		t.Errorf("expected inherited requires dependency, got %+v", stable.Dependencies)
	}
	if cmd, ok := stable.Commands["run"]; !ok || cmd.Path != "bin/hello" {
		t.Errorf("expected a synthesized run command from main=, got %+v", stable.Commands)
	}

	testing2 := byID["sha256new=bbb"]
	if testing2.Stability != model.Testing {
		t.Errorf("expected outer group's testing stability, got %v", testing2.Stability)
	}
	if cmd, ok := testing2.Commands["run"]; !ok || cmd.Path != "bin/hello2" {
		t.Errorf("expected explicit run command, got %+v", testing2.Commands)
	}
}
