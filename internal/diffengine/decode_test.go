package diffengine

import "testing"

func TestDecodeOperationsAddAndUpdateNode(t *testing.T) {
	data := []byte(`[
		{"kind":"addNode","node":{"id":"1","name":"A","type":"n8n-nodes-base.set","typeVersion":1,"position":[0,0],"parameters":{}}},
		{"kind":"updateNode","name":"A","newName":"A2","parameters":{"x":1}}
	]`)
	ops, err := DecodeOperations(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ops) != 2 {
		t.Fatalf("expected 2 ops, got %d", len(ops))
	}
	add, ok := ops[0].(AddNode)
	if !ok || add.Node.Name != "A" {
		t.Fatalf("expected AddNode for 'A', got %+v", ops[0])
	}
	upd, ok := ops[1].(UpdateNode)
	if !ok || upd.NewName != "A2" {
		t.Fatalf("expected UpdateNode renaming to A2, got %+v", ops[1])
	}
}

func TestDecodeOperationsSymbolicBranch(t *testing.T) {
	data := []byte(`[
		{"kind":"addConnection","sourceNode":"C","targetNode":"ok","branch":{"symbol":"true"}}
	]`)
	ops, err := DecodeOperations(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	add, ok := ops[0].(AddConnection)
	if !ok {
		t.Fatalf("expected AddConnection, got %+v", ops[0])
	}
	if add.Branch.Symbol != "true" {
		t.Fatalf("expected symbolic branch 'true', got %+v", add.Branch)
	}
}

func TestDecodeOperationsRejectsUnknownKind(t *testing.T) {
	_, err := DecodeOperations([]byte(`[{"kind":"frobnicate"}]`))
	if err == nil {
		t.Fatal("expected an error for an unknown operation kind")
	}
}

func TestDecodeOperationsAddNodeRequiresNode(t *testing.T) {
	_, err := DecodeOperations([]byte(`[{"kind":"addNode"}]`))
	if err == nil {
		t.Fatal("expected an error when addNode is missing its node")
	}
}

func TestDecodeOperationsActivateDeactivate(t *testing.T) {
	ops, err := DecodeOperations([]byte(`[{"kind":"activateWorkflow"},{"kind":"deactivateWorkflow"}]`))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ops[0].(ActivateWorkflow); !ok {
		t.Fatalf("expected ActivateWorkflow, got %+v", ops[0])
	}
	if _, ok := ops[1].(DeactivateWorkflow); !ok {
		t.Fatalf("expected DeactivateWorkflow, got %+v", ops[1])
	}
}
