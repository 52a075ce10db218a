// Package mchp holds the Microchip PIC32 programming constants: the MTAP and
// ETAP instruction codes, the MCHP command-DR codes loaded through
// MTAP_COMMAND and the status byte they return.
//
// Every lookup is total. Codes without a table entry still carry a printable
// name so decoders never need a second "not found" path.
package mchp

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// EntryKey is the 32-bit value ("MCHP") clocked in MSB-first while MCLR is
// held low to put the device into ICSP mode.
const EntryKey uint32 = 0x4D434850

// EntryKeyBits is the number of PGEC rising edges that carry EntryKey.
const EntryKeyBits = 32

// IRLength is the instruction register width of both TAPs.
const IRLength = 5

// TAP selects which instruction space the 5-bit IR decodes into.
type TAP uint8

const (
	MTAP TAP = iota
	ETAP
)

func (t TAP) String() string {
	switch t {
	case MTAP:
		return "MTAP"
	case ETAP:
		return "ETAP"
	default:
		return fmt.Sprintf("TAP(%d)", uint8(t))
	}
}

// Instruction is a 5-bit IR code. The MTAP and ETAP instruction spaces are
// disjoint on PIC32, so a single enumeration covers both.
type Instruction uint8

const (
	EMTAPIDCode   Instruction = 0x01
	MTAPSwMTAP    Instruction = 0x04
	MTAPSwETAP    Instruction = 0x05
	MTAPCommand   Instruction = 0x07
	ETAPAddress   Instruction = 0x08
	ETAPData      Instruction = 0x09
	ETAPControl   Instruction = 0x0A
	ETAPEJTAGBoot Instruction = 0x0C
	ETAPFastData  Instruction = 0x0E
)

type instructionInfo struct {
	name string
	tap  TAP
}

var instructions = map[Instruction]instructionInfo{
	EMTAPIDCode:   {"E_MTAP_IDCODE", MTAP},
	MTAPSwMTAP:    {"MTAP_SW_MTAP", MTAP},
	MTAPSwETAP:    {"MTAP_SW_ETAP", MTAP},
	MTAPCommand:   {"MTAP_COMMAND", MTAP},
	ETAPAddress:   {"ETAP_ADDRESS", ETAP},
	ETAPData:      {"ETAP_DATA", ETAP},
	ETAPControl:   {"ETAP_CONTROL", ETAP},
	ETAPEJTAGBoot: {"ETAP_EJTAGBOOT", ETAP},
	ETAPFastData:  {"ETAP_FASTDATA", ETAP},
}

// Known reports whether the code has a table entry.
func (i Instruction) Known() bool {
	_, ok := instructions[i]
	return ok
}

// Name returns the canonical instruction name, or "UNKNOWN_0x1f" style text
// for codes outside the table.
func (i Instruction) Name() string {
	if info, ok := instructions[i]; ok {
		return info.name
	}
	return fmt.Sprintf("UNKNOWN_%#x", uint8(i))
}

func (i Instruction) String() string {
	return i.Name()
}

// Owner returns the TAP that implements the instruction. Unknown codes are
// attributed to the MTAP.
func (i Instruction) Owner() TAP {
	return instructions[i].tap
}

// Selects reports whether loading i switches the active TAP, and to which.
func (i Instruction) Selects() (TAP, bool) {
	switch i {
	case MTAPSwMTAP:
		return MTAP, true
	case MTAPSwETAP:
		return ETAP, true
	}
	return MTAP, false
}

// Instructions returns every known instruction in code order.
func Instructions() []Instruction {
	out := make([]Instruction, 0, len(instructions))
	for i := range instructions {
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

// ParseInstruction accepts either a canonical name ("MTAP_COMMAND") or a
// numeric code ("0x07", "7").
func ParseInstruction(s string) (Instruction, error) {
	s = strings.TrimSpace(s)
	for code, info := range instructions {
		if strings.EqualFold(info.name, s) {
			return code, nil
		}
	}
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil || v >= 1<<IRLength {
		return 0, fmt.Errorf("mchp: unknown instruction %q", s)
	}
	return Instruction(v), nil
}

// Command is an 8-bit MCHP command loaded into the data register selected by
// MTAP_COMMAND.
type Command uint8

const (
	CmdStatus        Command = 0x00
	CmdDeassertReset Command = 0xD0
	CmdAssertReset   Command = 0xD1
	CmdErase         Command = 0xFC
	CmdFlashDisable  Command = 0xFD
	CmdFlashEnable   Command = 0xFE
)

var commands = map[Command]string{
	CmdStatus:        "MTAP_DR_MCHP_STATUS",
	CmdAssertReset:   "MTAP_DR_MCHP_ASSERT_RST",
	CmdDeassertReset: "MTAP_DR_MCHP_DE_ASSERT_RST",
	CmdErase:         "MTAP_DR_MCHP_ERASE",
	CmdFlashEnable:   "MTAP_DR_MCHP_FLASH_ENABLE",
	CmdFlashDisable:  "MTAP_DR_MCHP_FLASH_DISABLE",
}

// CommandWidth is the shift length of an MCHP command-DR load.
const CommandWidth = 8

// Known reports whether the code has a table entry.
func (c Command) Known() bool {
	_, ok := commands[c]
	return ok
}

// Name returns the canonical command name or "UNKNOWN_0x42" style text.
func (c Command) Name() string {
	if name, ok := commands[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN_%#x", uint8(c))
}

func (c Command) String() string {
	return c.Name()
}

// Commands returns every known command in code order.
func Commands() []Command {
	out := make([]Command, 0, len(commands))
	for c := range commands {
		out = append(out, c)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

// ParseCommand accepts a canonical name, the name without its
// "MTAP_DR_MCHP_" prefix, or a numeric code.
func ParseCommand(s string) (Command, error) {
	s = strings.TrimSpace(s)
	for code, name := range commands {
		if strings.EqualFold(name, s) || strings.EqualFold(strings.TrimPrefix(name, "MTAP_DR_MCHP_"), s) {
			return code, nil
		}
	}
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("mchp: unknown command %q", s)
	}
	return Command(v), nil
}

// Status is the byte returned on TDO while MTAP_DR_MCHP_STATUS is shifted.
type Status uint8

const (
	StatusDEVRST Status = 1 << 0 // device held in reset
	StatusFCBUSY Status = 1 << 2 // flash controller busy
	StatusCFGRDY Status = 1 << 3 // configuration loaded
	StatusNVMERR Status = 1 << 5 // flash operation failed
	StatusCPS    Status = 1 << 7 // code protection off
)

var statusFlags = []struct {
	bit  Status
	name string
}{
	{StatusCPS, "CPS"},
	{StatusNVMERR, "NVMERR"},
	{StatusCFGRDY, "CFGRDY"},
	{StatusFCBUSY, "FCBUSY"},
	{StatusDEVRST, "DEVRST"},
}

// Flags returns the names of the set flags, most significant first.
func (s Status) Flags() []string {
	var out []string
	for _, f := range statusFlags {
		if s&f.bit != 0 {
			out = append(out, f.name)
		}
	}
	return out
}

// String renders the byte and its flags, e.g. "0x88 CPS CFGRDY".
func (s Status) String() string {
	flags := s.Flags()
	if len(flags) == 0 {
		return fmt.Sprintf("%#02x -", uint8(s))
	}
	return fmt.Sprintf("%#02x %s", uint8(s), strings.Join(flags, " "))
}

// Ready reports whether the device is out of reset with the flash controller
// idle and configuration loaded, the condition programmers poll for after an
// erase.
func (s Status) Ready() bool {
	return s&StatusCFGRDY != 0 && s&StatusFCBUSY == 0
}
