package chatv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "chat.v1.ChatService"

const (
	ChatService_Register_FullMethodName        = "/chat.v1.ChatService/Register"
	ChatService_Login_FullMethodName           = "/chat.v1.ChatService/Login"
	ChatService_Logout_FullMethodName          = "/chat.v1.ChatService/Logout"
	ChatService_GetUser_FullMethodName         = "/chat.v1.ChatService/GetUser"
	ChatService_OpenPrivateChat_FullMethodName = "/chat.v1.ChatService/OpenPrivateChat"
	ChatService_SendMessage_FullMethodName     = "/chat.v1.ChatService/SendMessage"
	ChatService_GetHistory_FullMethodName      = "/chat.v1.ChatService/GetHistory"
	ChatService_ListChats_FullMethodName       = "/chat.v1.ChatService/ListChats"
	ChatService_SubscribeRoom_FullMethodName   = "/chat.v1.ChatService/SubscribeRoom"
	ChatService_SubscribeUsers_FullMethodName  = "/chat.v1.ChatService/SubscribeUsers"
	ChatService_SubscribeChats_FullMethodName  = "/chat.v1.ChatService/SubscribeChats"
)

// ChatServiceServer is the server API for ChatService.
// Implementations must embed UnimplementedChatServiceServer.
type ChatServiceServer interface {
	Register(context.Context, *RegisterRequest) (*AuthResponse, error)
	Login(context.Context, *LoginRequest) (*AuthResponse, error)
	Logout(context.Context, *LogoutRequest) (*LogoutResponse, error)
	GetUser(context.Context, *GetUserRequest) (*User, error)
	OpenPrivateChat(context.Context, *OpenPrivateChatRequest) (*OpenPrivateChatResponse, error)
	SendMessage(context.Context, *SendMessageRequest) (*Message, error)
	GetHistory(*GetHistoryRequest, grpc.ServerStreamingServer[Message]) error
	ListChats(*ListChatsRequest, grpc.ServerStreamingServer[Chat]) error
	SubscribeRoom(*SubscribeRoomRequest, grpc.ServerStreamingServer[RoomSnapshot]) error
	SubscribeUsers(*SubscribeUsersRequest, grpc.ServerStreamingServer[UsersSnapshot]) error
	SubscribeChats(*SubscribeChatsRequest, grpc.ServerStreamingServer[ChatsSnapshot]) error
	mustEmbedUnimplementedChatServiceServer()
}

// UnimplementedChatServiceServer answers every method with codes.Unimplemented.
type UnimplementedChatServiceServer struct{}

func (UnimplementedChatServiceServer) Register(context.Context, *RegisterRequest) (*AuthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Register not implemented")
}
func (UnimplementedChatServiceServer) Login(context.Context, *LoginRequest) (*AuthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}
func (UnimplementedChatServiceServer) Logout(context.Context, *LogoutRequest) (*LogoutResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Logout not implemented")
}
func (UnimplementedChatServiceServer) GetUser(context.Context, *GetUserRequest) (*User, error) {
	return nil, status.Error(codes.Unimplemented, "method GetUser not implemented")
}
func (UnimplementedChatServiceServer) OpenPrivateChat(context.Context, *OpenPrivateChatRequest) (*OpenPrivateChatResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method OpenPrivateChat not implemented")
}
func (UnimplementedChatServiceServer) SendMessage(context.Context, *SendMessageRequest) (*Message, error) {
	return nil, status.Error(codes.Unimplemented, "method SendMessage not implemented")
}
func (UnimplementedChatServiceServer) GetHistory(*GetHistoryRequest, grpc.ServerStreamingServer[Message]) error {
	return status.Error(codes.Unimplemented, "method GetHistory not implemented")
}
func (UnimplementedChatServiceServer) ListChats(*ListChatsRequest, grpc.ServerStreamingServer[Chat]) error {
	return status.Error(codes.Unimplemented, "method ListChats not implemented")
}
func (UnimplementedChatServiceServer) SubscribeRoom(*SubscribeRoomRequest, grpc.ServerStreamingServer[RoomSnapshot]) error {
	return status.Error(codes.Unimplemented, "method SubscribeRoom not implemented")
}
func (UnimplementedChatServiceServer) SubscribeUsers(*SubscribeUsersRequest, grpc.ServerStreamingServer[UsersSnapshot]) error {
	return status.Error(codes.Unimplemented, "method SubscribeUsers not implemented")
}
func (UnimplementedChatServiceServer) SubscribeChats(*SubscribeChatsRequest, grpc.ServerStreamingServer[ChatsSnapshot]) error {
	return status.Error(codes.Unimplemented, "method SubscribeChats not implemented")
}
func (UnimplementedChatServiceServer) mustEmbedUnimplementedChatServiceServer() {}

// RegisterChatServiceServer registers srv on s.
func RegisterChatServiceServer(s grpc.ServiceRegistrar, srv ChatServiceServer) {
	s.RegisterService(&ChatService_ServiceDesc, srv)
}

func unaryHandler[Req, Resp any](method string, call func(ChatServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ChatServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ChatServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func streamHandler[Req, Resp any](call func(ChatServiceServer, *Req, grpc.ServerStreamingServer[Resp]) error) grpc.StreamHandler {
	return func(srv any, stream grpc.ServerStream) error {
		in := new(Req)
		if err := stream.RecvMsg(in); err != nil {
			return err
		}
		return call(srv.(ChatServiceServer), in, &grpc.GenericServerStream[Req, Resp]{ServerStream: stream})
	}
}

// ChatService_ServiceDesc is the grpc.ServiceDesc for ChatService.
var ChatService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ChatServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unaryHandler(ChatService_Register_FullMethodName, ChatServiceServer.Register)},
		{MethodName: "Login", Handler: unaryHandler(ChatService_Login_FullMethodName, ChatServiceServer.Login)},
		{MethodName: "Logout", Handler: unaryHandler(ChatService_Logout_FullMethodName, ChatServiceServer.Logout)},
		{MethodName: "GetUser", Handler: unaryHandler(ChatService_GetUser_FullMethodName, ChatServiceServer.GetUser)},
		{MethodName: "OpenPrivateChat", Handler: unaryHandler(ChatService_OpenPrivateChat_FullMethodName, ChatServiceServer.OpenPrivateChat)},
		{MethodName: "SendMessage", Handler: unaryHandler(ChatService_SendMessage_FullMethodName, ChatServiceServer.SendMessage)},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "GetHistory", Handler: streamHandler(ChatServiceServer.GetHistory), ServerStreams: true},
		{StreamName: "ListChats", Handler: streamHandler(ChatServiceServer.ListChats), ServerStreams: true},
		{StreamName: "SubscribeRoom", Handler: streamHandler(ChatServiceServer.SubscribeRoom), ServerStreams: true},
		{StreamName: "SubscribeUsers", Handler: streamHandler(ChatServiceServer.SubscribeUsers), ServerStreams: true},
		{StreamName: "SubscribeChats", Handler: streamHandler(ChatServiceServer.SubscribeChats), ServerStreams: true},
	},
	Metadata: "chat/v1/chat.proto",
}

// ChatServiceClient is the client API for ChatService.
type ChatServiceClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*LogoutResponse, error)
	GetUser(ctx context.Context, in *GetUserRequest, opts ...grpc.CallOption) (*User, error)
	OpenPrivateChat(ctx context.Context, in *OpenPrivateChatRequest, opts ...grpc.CallOption) (*OpenPrivateChatResponse, error)
	SendMessage(ctx context.Context, in *SendMessageRequest, opts ...grpc.CallOption) (*Message, error)
	GetHistory(ctx context.Context, in *GetHistoryRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[Message], error)
	ListChats(ctx context.Context, in *ListChatsRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[Chat], error)
	SubscribeRoom(ctx context.Context, in *SubscribeRoomRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[RoomSnapshot], error)
	SubscribeUsers(ctx context.Context, in *SubscribeUsersRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[UsersSnapshot], error)
	SubscribeChats(ctx context.Context, in *SubscribeChatsRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[ChatsSnapshot], error)
}

type chatServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewChatServiceClient returns a client that speaks the JSON codec over cc.
func NewChatServiceClient(cc grpc.ClientConnInterface) ChatServiceClient {
	return &chatServiceClient{cc}
}

func callOpts(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.StaticMethod(), grpc.CallContentSubtype(CodecName)}, opts...)
}

func (c *chatServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	out := new(AuthResponse)
	if err := c.cc.Invoke(ctx, ChatService_Register_FullMethodName, in, out, callOpts(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chatServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	out := new(AuthResponse)
	if err := c.cc.Invoke(ctx, ChatService_Login_FullMethodName, in, out, callOpts(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chatServiceClient) Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*LogoutResponse, error) {
	out := new(LogoutResponse)
	if err := c.cc.Invoke(ctx, ChatService_Logout_FullMethodName, in, out, callOpts(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chatServiceClient) GetUser(ctx context.Context, in *GetUserRequest, opts ...grpc.CallOption) (*User, error) {
	out := new(User)
	if err := c.cc.Invoke(ctx, ChatService_GetUser_FullMethodName, in, out, callOpts(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chatServiceClient) OpenPrivateChat(ctx context.Context, in *OpenPrivateChatRequest, opts ...grpc.CallOption) (*OpenPrivateChatResponse, error) {
	out := new(OpenPrivateChatResponse)
	if err := c.cc.Invoke(ctx, ChatService_OpenPrivateChat_FullMethodName, in, out, callOpts(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chatServiceClient) SendMessage(ctx context.Context, in *SendMessageRequest, opts ...grpc.CallOption) (*Message, error) {
	out := new(Message)
	if err := c.cc.Invoke(ctx, ChatService_SendMessage_FullMethodName, in, out, callOpts(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func openStream[Req, Resp any](ctx context.Context, cc grpc.ClientConnInterface, desc *grpc.StreamDesc, method string, in *Req, opts []grpc.CallOption) (grpc.ServerStreamingClient[Resp], error) {
	stream, err := cc.NewStream(ctx, desc, method, callOpts(opts)...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[Req, Resp]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

func (c *chatServiceClient) GetHistory(ctx context.Context, in *GetHistoryRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[Message], error) {
	return openStream[GetHistoryRequest, Message](ctx, c.cc, &ChatService_ServiceDesc.Streams[0], ChatService_GetHistory_FullMethodName, in, opts)
}

func (c *chatServiceClient) ListChats(ctx context.Context, in *ListChatsRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[Chat], error) {
	return openStream[ListChatsRequest, Chat](ctx, c.cc, &ChatService_ServiceDesc.Streams[1], ChatService_ListChats_FullMethodName, in, opts)
}

func (c *chatServiceClient) SubscribeRoom(ctx context.Context, in *SubscribeRoomRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[RoomSnapshot], error) {
	return openStream[SubscribeRoomRequest, RoomSnapshot](ctx, c.cc, &ChatService_ServiceDesc.Streams[2], ChatService_SubscribeRoom_FullMethodName, in, opts)
}

func (c *chatServiceClient) SubscribeUsers(ctx context.Context, in *SubscribeUsersRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[UsersSnapshot], error) {
	return openStream[SubscribeUsersRequest, UsersSnapshot](ctx, c.cc, &ChatService_ServiceDesc.Streams[3], ChatService_SubscribeUsers_FullMethodName, in, opts)
}

func (c *chatServiceClient) SubscribeChats(ctx context.Context, in *SubscribeChatsRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[ChatsSnapshot], error) {
	return openStream[SubscribeChatsRequest, ChatsSnapshot](ctx, c.cc, &ChatService_ServiceDesc.Streams[4], ChatService_SubscribeChats_FullMethodName, in, opts)
}
