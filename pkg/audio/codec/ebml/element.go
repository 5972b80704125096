package ebml

import "fmt"

// ID is an EBML element ID with its length marker bits kept, the way
// Matroska documents them (e.g. 0x1A45DFA3).
type ID uint32

// Element IDs the decoder knows about. Elements outside this table are
// skipped.
const (
	IDEBML               ID = 0x1A45DFA3
	IDEBMLVersion        ID = 0x4286
	IDEBMLReadVersion    ID = 0x42F7
	IDEBMLMaxIDLength    ID = 0x42F2
	IDEBMLMaxSizeLength  ID = 0x42F3
	IDDocType            ID = 0x4282
	IDDocTypeVersion     ID = 0x4287
	IDDocTypeReadVersion ID = 0x4285

	IDVoid  ID = 0xEC
	IDCRC32 ID = 0xBF

	IDSegment ID = 0x18538067

	IDSeekHead     ID = 0x114D9B74
	IDSeek         ID = 0x4DBB
	IDSeekID       ID = 0x53AB
	IDSeekPosition ID = 0x53AC

	IDInfo           ID = 0x1549A966
	IDTimestampScale ID = 0x2AD7B1
	IDDuration       ID = 0x4489
	IDDateUTC        ID = 0x4461
	IDTitle          ID = 0x7BA9
	IDMuxingApp      ID = 0x4D80
	IDWritingApp     ID = 0x5741
	IDSegmentUID     ID = 0x73A4

	IDTracks          ID = 0x1654AE6B
	IDTrackEntry      ID = 0xAE
	IDTrackNumber     ID = 0xD7
	IDTrackUID        ID = 0x73C5
	IDTrackType       ID = 0x83
	IDFlagLacing      ID = 0x9C
	IDDefaultDuration ID = 0x23E383
	IDName            ID = 0x536E
	IDLanguage        ID = 0x22B59C
	IDCodecID         ID = 0x86
	IDCodecPrivate    ID = 0x63A2
	IDCodecDelay      ID = 0x56AA
	IDSeekPreRoll     ID = 0x56BB

	IDAudio                   ID = 0xE1
	IDSamplingFrequency       ID = 0xB5
	IDOutputSamplingFrequency ID = 0x78B5
	IDChannels                ID = 0x9F
	IDBitDepth                ID = 0x6264
	IDVideo                   ID = 0xE0

	IDCluster        ID = 0x1F43B675
	IDTimestamp      ID = 0xE7
	IDPosition       ID = 0xA7
	IDPrevSize       ID = 0xAB
	IDSimpleBlock    ID = 0xA3
	IDBlockGroup     ID = 0xA0
	IDBlock          ID = 0xA1
	IDBlockDuration  ID = 0x9B
	IDReferenceBlock ID = 0xFB
	IDDiscardPadding ID = 0x75A2

	IDCues        ID = 0x1C53BB6B
	IDChapters    ID = 0x1043A770
	IDTags        ID = 0x1254C367
	IDAttachments ID = 0x1941A469
)

// root is the pseudo parent of top-level elements.
const root ID = 0

type element struct {
	name   string
	master bool
	parent ID
	global bool
}

var elements = map[ID]element{
	IDEBML:               {name: "EBML", master: true, parent: root},
	IDEBMLVersion:        {name: "EBMLVersion", parent: IDEBML},
	IDEBMLReadVersion:    {name: "EBMLReadVersion", parent: IDEBML},
	IDEBMLMaxIDLength:    {name: "EBMLMaxIDLength", parent: IDEBML},
	IDEBMLMaxSizeLength:  {name: "EBMLMaxSizeLength", parent: IDEBML},
	IDDocType:            {name: "DocType", parent: IDEBML},
	IDDocTypeVersion:     {name: "DocTypeVersion", parent: IDEBML},
	IDDocTypeReadVersion: {name: "DocTypeReadVersion", parent: IDEBML},

	IDVoid:  {name: "Void", global: true},
	IDCRC32: {name: "CRC-32", global: true},

	IDSegment: {name: "Segment", master: true, parent: root},

	IDSeekHead:     {name: "SeekHead", master: true, parent: IDSegment},
	IDSeek:         {name: "Seek", master: true, parent: IDSeekHead},
	IDSeekID:       {name: "SeekID", parent: IDSeek},
	IDSeekPosition: {name: "SeekPosition", parent: IDSeek},

	IDInfo:           {name: "Info", master: true, parent: IDSegment},
	IDTimestampScale: {name: "TimestampScale", parent: IDInfo},
	IDDuration:       {name: "Duration", parent: IDInfo},
	IDDateUTC:        {name: "DateUTC", parent: IDInfo},
	IDTitle:          {name: "Title", parent: IDInfo},
	IDMuxingApp:      {name: "MuxingApp", parent: IDInfo},
	IDWritingApp:     {name: "WritingApp", parent: IDInfo},
	IDSegmentUID:     {name: "SegmentUID", parent: IDInfo},

	IDTracks:          {name: "Tracks", master: true, parent: IDSegment},
	IDTrackEntry:      {name: "TrackEntry", master: true, parent: IDTracks},
	IDTrackNumber:     {name: "TrackNumber", parent: IDTrackEntry},
	IDTrackUID:        {name: "TrackUID", parent: IDTrackEntry},
	IDTrackType:       {name: "TrackType", parent: IDTrackEntry},
	IDFlagLacing:      {name: "FlagLacing", parent: IDTrackEntry},
	IDDefaultDuration: {name: "DefaultDuration", parent: IDTrackEntry},
	IDName:            {name: "Name", parent: IDTrackEntry},
	IDLanguage:        {name: "Language", parent: IDTrackEntry},
	IDCodecID:         {name: "CodecID", parent: IDTrackEntry},
	IDCodecPrivate:    {name: "CodecPrivate", parent: IDTrackEntry},
	IDCodecDelay:      {name: "CodecDelay", parent: IDTrackEntry},
	IDSeekPreRoll:     {name: "SeekPreRoll", parent: IDTrackEntry},

	IDAudio:                   {name: "Audio", master: true, parent: IDTrackEntry},
	IDSamplingFrequency:       {name: "SamplingFrequency", parent: IDAudio},
	IDOutputSamplingFrequency: {name: "OutputSamplingFrequency", parent: IDAudio},
	IDChannels:                {name: "Channels", parent: IDAudio},
	IDBitDepth:                {name: "BitDepth", parent: IDAudio},
	IDVideo:                   {name: "Video", master: true, parent: IDTrackEntry},

	IDCluster:        {name: "Cluster", master: true, parent: IDSegment},
	IDTimestamp:      {name: "Timestamp", parent: IDCluster},
	IDPosition:       {name: "Position", parent: IDCluster},
	IDPrevSize:       {name: "PrevSize", parent: IDCluster},
	IDSimpleBlock:    {name: "SimpleBlock", parent: IDCluster},
	IDBlockGroup:     {name: "BlockGroup", master: true, parent: IDCluster},
	IDBlock:          {name: "Block", parent: IDBlockGroup},
	IDBlockDuration:  {name: "BlockDuration", parent: IDBlockGroup},
	IDReferenceBlock: {name: "ReferenceBlock", parent: IDBlockGroup},
	IDDiscardPadding: {name: "DiscardPadding", parent: IDBlockGroup},

	IDCues:        {name: "Cues", master: true, parent: IDSegment},
	IDChapters:    {name: "Chapters", master: true, parent: IDSegment},
	IDTags:        {name: "Tags", master: true, parent: IDSegment},
	IDAttachments: {name: "Attachments", master: true, parent: IDSegment},
}

// Name returns the Matroska name of id, or a hex form for unknown IDs.
func (id ID) Name() string {
	if e, ok := elements[id]; ok {
		return e.name
	}
	return fmt.Sprintf("0x%X", uint32(id))
}

// String implements fmt.Stringer.
func (id ID) String() string {
	return id.Name()
}

// IsMaster reports whether id is a known master element.
func (id ID) IsMaster() bool {
	return elements[id].master
}
