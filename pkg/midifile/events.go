package midifile

// EventKind is the class of a track event, derived from its status byte
type EventKind int

const (
	EventOther EventKind = iota
	EventNoteOff
	EventNoteOn
	EventPolyAftertouch
	EventController
	EventProgramChange
	EventChannelAftertouch
	EventPitchBend
	EventSysEx
	EventMeta
)

var eventNames = map[EventKind]string{
	EventOther:             "Other",
	EventNoteOff:           "NoteOff",
	EventNoteOn:            "NoteOn",
	EventPolyAftertouch:    "PolyAftertouch",
	EventController:        "Controller",
	EventProgramChange:     "ProgramChange",
	EventChannelAftertouch: "ChannelAftertouch",
	EventPitchBend:         "PitchBend",
	EventSysEx:             "SysEx",
	EventMeta:              "Meta",
}

func (k EventKind) String() string {
	return eventNames[k]
}

// ClassifyStatus maps a status byte to its event kind.
func ClassifyStatus(status byte) EventKind {
	if status == StatusMeta {
		return EventMeta
	}
	switch status >> 4 {
	case 0x8:
		return EventNoteOff
	case 0x9:
		return EventNoteOn
	case 0xA:
		return EventPolyAftertouch
	case 0xB:
		return EventController
	case 0xC:
		return EventProgramChange
	case 0xD:
		return EventChannelAftertouch
	case 0xE:
		return EventPitchBend
	case 0xF:
		return EventSysEx
	default:
		return EventOther
	}
}

// extraDataBytes is the number of data bytes a channel message carries after
// its first one.
func (k EventKind) extraDataBytes() int {
	switch k {
	case EventNoteOff, EventNoteOn, EventPolyAftertouch, EventController, EventPitchBend:
		return 1
	default:
		return 0
	}
}
