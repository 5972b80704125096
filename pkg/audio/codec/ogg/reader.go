package ogg

import (
	"io"
	"iter"
)

// ReadPackets returns an iterator over every packet in an Ogg bitstream,
// header packets included. Multiplexed and chained streams are both
// handled; Packet.SerialNo tells them apart.
//
// Example:
//
//	for pkt, err := range ogg.ReadPackets(f) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(pkt.PacketNo, pkt.GranulePos, len(pkt.Data))
//	}
//
// A hole in the page sequence is yielded as ErrHole; iteration continues
// if the caller keeps ranging.
func ReadPackets(r io.Reader) iter.Seq2[*Packet, error] {
	return func(yield func(*Packet, error) bool) {
		pr, err := NewPageReader(r)
		if err != nil {
			yield(nil, err)
			return
		}
		defer pr.Close()

		streams := make(map[int32]*StreamState)
		defer func() {
			for _, s := range streams {
				s.Clear()
			}
		}()

		for {
			page, err := pr.ReadPage()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}

			serialNo := page.SerialNo()
			stream := streams[serialNo]
			if page.IsBOS() || stream == nil {
				if stream != nil {
					stream.Clear()
				}
				if stream, err = NewStreamState(serialNo); err != nil {
					yield(nil, err)
					return
				}
				streams[serialNo] = stream
			}

			if err := stream.PageIn(page); err != nil {
				if !yield(nil, err) {
					return
				}
				continue
			}

			for {
				var pkt Packet
				err := stream.PacketOut(&pkt)
				if err == ErrNoPacket {
					break
				}
				if err != nil {
					if !yield(nil, err) {
						return
					}
					continue
				}
				if !yield(&pkt, nil) {
					return
				}
			}
		}
	}
}
