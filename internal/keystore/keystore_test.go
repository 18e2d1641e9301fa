package keystore

import (
	"testing"

	"github.com/untoldecay/goldenthread/internal/secretstore"
)

func TestLoadOrCreatePersistsAndReloads(t *testing.T) {
	store := secretstore.NewMem()

	k1, err := LoadOrCreate(store)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}

	k2, err := LoadOrCreate(store)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if k1 != k2 {
		t.Fatal("key changed across loads from the same store")
	}
}

func TestTestOverrideTakesPrecedence(t *testing.T) {
	defer ClearTestOverride()

	var want MasterKey
	want[0] = 0xAB
	SetTestOverride(want)

	got, err := LoadOrCreate(secretstore.NewMem())
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatal("override was not honored")
	}
}

func TestDeriveKeySeparationAndDeterminism(t *testing.T) {
	var master MasterKey
	for i := range master {
		master[i] = byte(i)
	}

	db1, err := Derive(master, PurposeDatabase)
	if err != nil {
		t.Fatal(err)
	}
	db2, err := Derive(master, PurposeDatabase)
	if err != nil {
		t.Fatal(err)
	}
	if db1 != db2 {
		t.Fatal("derive is not deterministic")
	}

	att, err := Derive(master, PurposeAttachments)
	if err != nil {
		t.Fatal(err)
	}
	if att == db1 {
		t.Fatal("different purposes produced the same derived key")
	}
	if [32]byte(att) == [32]byte(master) || [32]byte(db1) == [32]byte(master) {
		t.Fatal("derived key equals master key")
	}
}
