package protocol

import "testing"

func TestCompactRecordsCompactsRunsOfThreeOrMore(t *testing.T) {
	seqs := []Wrap24{5, 6, 7, 8, 20, 22}
	records := CompactRecords(seqs)

	if len(records) != 3 {
		t.Fatalf("expected 3 records (one range, two singles), got %d: %+v", len(records), records)
	}
	if records[0].Kind != RecordRange || records[0].Start != 5 || records[0].End != 8 {
		t.Fatalf("expected range [5,8], got %+v", records[0])
	}
	if records[1].Kind != RecordSingle || records[1].Start != 20 {
		t.Fatalf("expected single 20, got %+v", records[1])
	}
	if records[2].Kind != RecordSingle || records[2].Start != 22 {
		t.Fatalf("expected single 22, got %+v", records[2])
	}
}

func TestCompactRecordsKeepsPairsAsSingles(t *testing.T) {
	records := CompactRecords([]Wrap24{10, 11})
	if len(records) != 2 {
		t.Fatalf("a run of 2 should stay as singles, got %+v", records)
	}
	for _, r := range records {
		if r.Kind != RecordSingle {
			t.Fatalf("expected single records for a 2-run, got %+v", r)
		}
	}
}

func TestExpandRecordsInvertsCompactRecords(t *testing.T) {
	original := []Wrap24{1, 2, 3, 4, 9, 30, 31, 32}
	records := CompactRecords(original)
	expanded := ExpandRecords(records)

	if len(expanded) != len(original) {
		t.Fatalf("expected %d sequences back, got %d: %v", len(original), len(expanded), expanded)
	}
	seen := make(map[Wrap24]bool)
	for _, s := range expanded {
		seen[s] = true
	}
	for _, want := range original {
		if !seen[want] {
			t.Fatalf("sequence %d missing from expansion", want)
		}
	}
}

func TestAckEncodeDecodeRoundTrip(t *testing.T) {
	records := []Record{
		{Kind: RecordRange, Start: 1, End: 5},
		{Kind: RecordSingle, Start: 10},
	}
	data := EncodeACK(records)
	got, err := DecodeACK(data)
	if err != nil {
		t.Fatalf("DecodeACK: %v", err)
	}
	if len(got) != 2 || got[0] != records[0] || got[1] != records[1] {
		t.Fatalf("round trip mismatch: got %+v", got)
	}
}

func TestNackEncodeDecodeRoundTrip(t *testing.T) {
	records := []Record{{Kind: RecordSingle, Start: 77}}
	data := EncodeNACK(records)
	got, err := DecodeNACK(data)
	if err != nil {
		t.Fatalf("DecodeNACK: %v", err)
	}
	if len(got) != 1 || got[0] != records[0] {
		t.Fatalf("round trip mismatch: got %+v", got)
	}
}

func TestDecodeACKRejectsWrongIdentifier(t *testing.T) {
	data := EncodeNACK([]Record{{Kind: RecordSingle, Start: 1}})
	if _, err := DecodeACK(data); err == nil {
		t.Fatal("expected error decoding a NACK payload as ACK")
	}
}

func TestWrap24LessHandlesWraparound(t *testing.T) {
	a := Wrap24(wrap24Mod - 1)
	b := Wrap24(1)
	if !a.Less(b) {
		t.Fatal("expected modulus-1 to precede 1 across wraparound")
	}
	if b.Less(a) {
		t.Fatal("1 should not precede modulus-1 under modular distance")
	}
}

func TestWrap24SuccWraps(t *testing.T) {
	a := Wrap24(wrap24Mod - 1)
	if a.Succ() != 0 {
		t.Fatalf("expected wraparound to 0, got %d", a.Succ())
	}
}
