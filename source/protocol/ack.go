package protocol

import "sort"

// RecordKind discriminates a Single sequence record from a Range record in
// an ACK/NACK packet body.
type RecordKind byte

const (
	// RecordRange covers an inclusive [Start, End] run of sequences.
	RecordRange RecordKind = 0
	// RecordSingle covers exactly one sequence, held in Start.
	RecordSingle RecordKind = 1
)

// Record is one entry of an ACK or NACK packet.
type Record struct {
	Kind  RecordKind
	Start Wrap24
	End   Wrap24 // only meaningful when Kind == RecordRange
}

// CompactRecords sorts sequences and compacts runs of three or more
// consecutive values into Range records; shorter runs are emitted as Single
// records (spec.md §4.4: "Range emission MUST compact runs of three or more
// consecutive sequences into a Range; single and pair sequences MAY remain
// Singles").
func CompactRecords(sequences []Wrap24) []Record {
	if len(sequences) == 0 {
		return nil
	}
	sorted := append([]Wrap24(nil), sequences...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var records []Record
	runStart := sorted[0]
	runEnd := sorted[0]
	flush := func() {
		runLen := uint32(runEnd) - uint32(runStart) + 1
		if runLen >= 3 {
			records = append(records, Record{Kind: RecordRange, Start: runStart, End: runEnd})
			return
		}
		for v := runStart; v <= runEnd; v++ {
			records = append(records, Record{Kind: RecordSingle, Start: v})
		}
	}
	for _, seq := range sorted[1:] {
		if seq == runEnd+1 {
			runEnd = seq
			continue
		}
		if seq == runEnd {
			continue // duplicate input, ignore
		}
		flush()
		runStart, runEnd = seq, seq
	}
	flush()
	return records
}

// ExpandRecords inverts CompactRecords, returning every sequence covered by
// the record list.
func ExpandRecords(records []Record) []Wrap24 {
	var out []Wrap24
	for _, rec := range records {
		if rec.Kind == RecordSingle {
			out = append(out, rec.Start)
			continue
		}
		for v := rec.Start; v <= rec.End; v++ {
			out = append(out, v)
		}
	}
	return out
}

func encodeAckLike(id byte, records []Record) []byte {
	w := NewWriter()
	w.Byte(id)
	w.Uint16(uint16(len(records)))
	for _, rec := range records {
		w.Byte(byte(rec.Kind))
		w.Uint24(uint32(rec.Start))
		if rec.Kind == RecordRange {
			w.Uint24(uint32(rec.End))
		}
	}
	return w.Bytes()
}

func decodeAckLike(wantID byte, data []byte) ([]Record, error) {
	r := NewReader(data)
	id, err := r.Byte()
	if err != nil {
		return nil, err
	}
	if id != wantID {
		return nil, ErrMalformedPacket
	}
	count, err := r.Uint16()
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, count)
	for i := uint16(0); i < count; i++ {
		kindByte, err := r.Byte()
		if err != nil {
			return nil, err
		}
		kind := RecordKind(kindByte)
		start, err := r.Uint24()
		if err != nil {
			return nil, err
		}
		rec := Record{Kind: kind, Start: Wrap24(start)}
		if kind == RecordRange {
			end, err := r.Uint24()
			if err != nil {
				return nil, err
			}
			rec.End = Wrap24(end)
		}
		records = append(records, rec)
	}
	return records, nil
}

// EncodeACK serializes an ACK packet (0xc0) carrying records.
func EncodeACK(records []Record) []byte { return encodeAckLike(IDACK, records) }

// DecodeACK parses an ACK packet, validating the leading identifier byte.
func DecodeACK(data []byte) ([]Record, error) { return decodeAckLike(IDACK, data) }

// EncodeNACK serializes a NACK packet (0xa0) carrying records.
func EncodeNACK(records []Record) []byte { return encodeAckLike(IDNACK, records) }

// DecodeNACK parses a NACK packet, validating the leading identifier byte.
func DecodeNACK(data []byte) ([]Record, error) { return decodeAckLike(IDNACK, data) }
