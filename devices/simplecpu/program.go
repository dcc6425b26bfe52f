package simplecpu

// The kinds of bus transactions the program makes.
type kind int

const (
	kindFetch kind = iota
	kindLoad
	kindStore
)

// A transaction is one valid/ready handshake. For a fetch, word is the
// instruction returned. Loads return the current counter value and stores
// must write it back incremented.
type transaction struct {
	kind kind
	addr uint32
	word uint32
}

// DataAddr is where the program keeps its counter.
const DataAddr uint32 = 0x1000

// StoreAddr is where the program writes the incremented counter.
const StoreAddr uint32 = DataAddr + 4

// FullWordStrobe is the byte enable of a 32-bit store.
const FullWordStrobe uint64 = 0xf

// prologue runs once after reset.
var prologue = []transaction{
	{kind: kindFetch, addr: 0x00, word: 0x00001137}, // lui  x2, 0x1
	{kind: kindFetch, addr: 0x04, word: 0x00000093}, // addi x1, x0, 0
}

// loop repeats until the budget runs out.
var loop = []transaction{
	{kind: kindFetch, addr: 0x08, word: 0x00012083}, // lw   x1, 0(x2)
	{kind: kindLoad, addr: DataAddr},
	{kind: kindFetch, addr: 0x0c, word: 0x00108093}, // addi x1, x1, 1
	{kind: kindFetch, addr: 0x10, word: 0x00112223}, // sw   x1, 4(x2)
	{kind: kindStore, addr: StoreAddr},
	{kind: kindFetch, addr: 0x14, word: 0xff5ff06f}, // jal  x0, -12
}

// program walks the prologue once, then the loop forever.
type program struct {
	pos int
}

func (p *program) next() transaction {
	var t transaction

	if p.pos < len(prologue) {
		t = prologue[p.pos]
	} else {
		t = loop[(p.pos-len(prologue))%len(loop)]
	}

	p.pos++

	return t
}
