// e1000 Gigabit Ethernet driver
// https://github.com/usbarmory/e1000
//
// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package e1000

import (
	"context"

	"gvisor.dev/gvisor/pkg/buffer"
	"gvisor.dev/gvisor/pkg/tcpip"
	"gvisor.dev/gvisor/pkg/tcpip/header"
	"gvisor.dev/gvisor/pkg/tcpip/link/channel"
	"gvisor.dev/gvisor/pkg/tcpip/stack"
)

// linkQueueLen bounds how many outbound packets the network stack may queue
// on this NIC's channel endpoint before the stack sees backpressure.
const linkQueueLen = 256

// Link adapts a bound NIC onto a gvisor network stack, playing the role the
// USB ECM glue plays in the reference driver's usb/ethernet package: the NIC
// moves whole Ethernet frames, the channel.Endpoint moves network-layer
// packets, and Link translates between the two by hand, since this
// controller (unlike a USB CDC-ECM gadget) has no framing help from the bus.
type Link struct {
	nic *NIC
	ep  *channel.Endpoint
}

// NewLink wraps nic in a gvisor stack.LinkEndpoint sized for mtu-byte
// network-layer packets.
func NewLink(nic *NIC, mtu uint32) *Link {
	addr := tcpip.LinkAddress(nic.MAC()[:])
	return &Link{nic: nic, ep: channel.New(linkQueueLen, mtu, addr)}
}

// Endpoint returns the stack.LinkEndpoint to pass to stack.Stack.CreateNIC.
func (l *Link) Endpoint() stack.LinkEndpoint { return l.ep }

// PollInbound drains one received Ethernet frame from the NIC, if any, and
// injects its payload into the network stack. It is meant to be called from
// a polling loop, since this driver does not handle interrupts.
func (l *Link) PollInbound(scratch []byte) error {
	n, _, err := l.nic.Read(scratch)
	if err != nil || n < uint64(header.EthernetMinimumSize) {
		return err
	}

	frame := header.Ethernet(scratch[:n])
	payload := append([]byte(nil), scratch[header.EthernetMinimumSize:n]...)

	l.ep.InjectInbound(frame.Type(), stack.NewPacketBuffer(stack.PacketBufferOptions{
		Payload: buffer.MakeWithData(payload),
	}))

	return nil
}

// PollOutbound drains one packet queued by the network stack, wraps it in an
// Ethernet header addressed to dst, and transmits it through the NIC. It
// blocks until either a packet is available or ctx is done.
func (l *Link) PollOutbound(ctx context.Context, dst tcpip.LinkAddress) error {
	pkt := l.ep.ReadContext(ctx)
	if pkt == nil {
		return ctx.Err()
	}
	defer pkt.DecRef()

	payload := pkt.ToBuffer().Flatten()
	frame := make([]byte, header.EthernetMinimumSize+len(payload))

	eth := header.Ethernet(frame)
	eth.Encode(&header.EthernetFields{
		SrcAddr: l.ep.LinkAddress(),
		DstAddr: dst,
		Type:    pkt.NetworkProtocolNumber,
	})

	copy(frame[header.EthernetMinimumSize:], payload)

	_, err := l.nic.Write(frame)
	return err
}
