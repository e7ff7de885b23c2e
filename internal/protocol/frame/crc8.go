package frame

// CRC-8/CCITT, polynomial 0x07, initial value 0x00, computed over
// length ‖ type ‖ payload. Both microcontroller units use the same table.

var crcTable [256]byte

func init() {
	for i := 0; i < 256; i++ {
		crc := byte(i)
		for j := 0; j < 8; j++ {
			if crc&0x80 != 0 {
				crc = (crc << 1) ^ 0x07
			} else {
				crc <<= 1
			}
		}
		crcTable[i] = crc
	}
}

func crcUpdate(crc, b byte) byte {
	return crcTable[crc^b]
}

// Checksum computes the frame checksum for the given length byte, type
// byte and payload.
func Checksum(length, msgType byte, payload []byte) byte {
	crc := crcUpdate(0x00, length)
	crc = crcUpdate(crc, msgType)
	for _, b := range payload {
		crc = crcUpdate(crc, b)
	}
	return crc
}
